package main

import (
	"flag"
	"log"

	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/database"
	"github.com/noah-isme/placement-api/pkg/logger"
	"github.com/noah-isme/placement-api/pkg/migrations"
)

func main() {
	direction := flag.String("direction", string(migrations.Up), "up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "host", cfg.Database.Host, "error", err)
	}
	defer db.Close()

	if err := migrations.Run(db.DB, migrations.Direction(*direction), logr); err != nil {
		logr.Sugar().Fatalw("migration failed", "direction", *direction, "error", err)
	}
}
