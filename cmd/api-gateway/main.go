package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/placement-api/api/swagger"
	"github.com/noah-isme/placement-api/internal/handler"
	internalmiddleware "github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/repository"
	"github.com/noah-isme/placement-api/internal/service"
	"github.com/noah-isme/placement-api/pkg/cache"
	"github.com/noah-isme/placement-api/pkg/config"
	"github.com/noah-isme/placement-api/pkg/database"
	"github.com/noah-isme/placement-api/pkg/jobs"
	"github.com/noah-isme/placement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-api/pkg/middleware/requestid"
	"github.com/noah-isme/placement-api/pkg/migrations"
	"github.com/noah-isme/placement-api/pkg/storage"
)

// @title Placement API
// @version 1.0.0
// @description Campus recruitment pipeline: job postings, selection rounds, final selection and notification templates.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, db, err := openStores(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
	}
	if db != nil {
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Notifications.Driver == config.NotifyRedis {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close()
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	var selectionCache service.CacheRepository
	if cfg.Cache.Enabled {
		selectionCache = cacheRepo
	}
	cacheSvc := service.NewCacheService(selectionCache, metricsSvc, cfg.Cache.SelectionTTL, logr, cfg.Cache.Enabled)

	var deliverer service.NotificationDeliverer = service.NewLogDeliverer(logr)
	if cfg.Notifications.Driver == config.NotifyRedis {
		deliverer = service.NewRedisDeliverer(cacheRepo, cfg.Notifications.Channel)
	}
	notifier := service.NewAsyncNotifier(deliverer, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.Retries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, metricsSvc, logr)
	notifier.Start(ctx)
	defer notifier.Stop()

	validate := validator.New()
	templateSvc := service.NewTemplateService(notifier, validate, logr)

	var exporter *service.ExportService
	if cfg.Reports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "dir", cfg.Reports.StorageDir, "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exporter = service.NewExportService(files, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)
	}

	jobSvc := service.NewJobService(repos.Jobs, templateSvc, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(repos.Students, validate, logr)
	roundSvc := service.NewRoundService(repos.Rounds, repos.Enrollments, repos.Students, templateSvc, cacheSvc, metricsSvc,
		service.RoundServiceConfig{StrictTransitions: cfg.Pipeline.StrictTransitions}, validate, logr)
	selectionSvc := service.NewSelectionService(repos.Rounds, repos.Students, cacheSvc, templateSvc, exporter, logr)

	if cfg.Pipeline.SeedSampleData {
		if err := service.SeedSampleData(ctx, repos, logr); err != nil {
			logr.Sugar().Fatalw("failed to seed sample data", "error", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	selectionHandler := handler.NewSelectionHandler(selectionSvc, nil)
	if exporter != nil {
		selectionHandler = handler.NewSelectionHandler(selectionSvc, exporter)
	}

	handler.Handlers{
		Jobs:      handler.NewJobHandler(jobSvc),
		Rounds:    handler.NewRoundHandler(roundSvc),
		Students:  handler.NewStudentHandler(studentSvc),
		Selection: selectionHandler,
		Templates: handler.NewTemplateHandler(templateSvc),
		Metrics:   metricsHandler,
	}.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func openStores(cfg *config.Config, logr *zap.Logger) (service.SeedRepositories, *sqlx.DB, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory, "":
		store := repository.NewMemoryStore()
		return service.SeedRepositories{
			Jobs:        store.Jobs(),
			Students:    store.Students(),
			Rounds:      store.Rounds(),
			Enrollments: store.Enrollments(),
		}, nil, nil
	case config.StoragePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return service.SeedRepositories{}, nil, err
		}
		if cfg.Storage.AutoMigrate {
			if err := migrations.Run(db.DB, migrations.Up, logr); err != nil {
				_ = db.Close()
				return service.SeedRepositories{}, nil, err
			}
		}
		return service.SeedRepositories{
			Jobs:        repository.NewJobRepository(db),
			Students:    repository.NewStudentRepository(db),
			Rounds:      repository.NewRoundRepository(db),
			Enrollments: repository.NewEnrollmentRepository(db),
		}, db, nil
	default:
		return service.SeedRepositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
