package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

const roundColumns = "id, name, date, time, mode, status, created_at, updated_at"

const rosterQuery = `SELECT e.round_id, e.student_id, s.name, s.email, e.status
        FROM enrollments e JOIN students s ON s.id = e.student_id`

type rosterRow struct {
	RoundID int64 `db:"round_id"`
	models.StudentEntry
}

// RoundRepository manages persistence for hiring rounds.
type RoundRepository struct {
	db *sqlx.DB
}

// NewRoundRepository constructs a RoundRepository.
func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// List returns every round in insertion order with rosters attached.
func (r *RoundRepository) List(ctx context.Context) ([]models.Round, error) {
	rounds := make([]models.Round, 0)
	if err := r.db.SelectContext(ctx, &rounds, "SELECT "+roundColumns+" FROM rounds ORDER BY id ASC"); err != nil {
		return nil, translate(err, "list rounds")
	}
	var rows []rosterRow
	if err := r.db.SelectContext(ctx, &rows, rosterQuery+" ORDER BY e.round_id, e.id"); err != nil {
		return nil, translate(err, "list rosters")
	}
	byRound := make(map[int64][]models.StudentEntry, len(rounds))
	for _, row := range rows {
		byRound[row.RoundID] = append(byRound[row.RoundID], row.StudentEntry)
	}
	for i := range rounds {
		rounds[i].Students = byRound[rounds[i].ID]
		if rounds[i].Students == nil {
			rounds[i].Students = []models.StudentEntry{}
		}
	}
	return rounds, nil
}

// FindByID fetches a round and its roster.
func (r *RoundRepository) FindByID(ctx context.Context, id int64) (*models.Round, error) {
	var round models.Round
	if err := r.db.GetContext(ctx, &round, "SELECT "+roundColumns+" FROM rounds WHERE id = $1", id); err != nil {
		return nil, translate(err, "find round")
	}
	var rows []rosterRow
	if err := r.db.SelectContext(ctx, &rows, rosterQuery+" WHERE e.round_id = $1 ORDER BY e.id", id); err != nil {
		return nil, translate(err, "load roster")
	}
	round.Students = make([]models.StudentEntry, 0, len(rows))
	for _, row := range rows {
		round.Students = append(round.Students, row.StudentEntry)
	}
	return &round, nil
}

// Create inserts a round and stores the generated id on it.
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	now := time.Now().UTC()
	round.CreatedAt = now
	round.UpdatedAt = now
	round.Students = []models.StudentEntry{}
	const query = `INSERT INTO rounds (name, date, time, mode, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		round.Name, round.Date, round.Time, round.Mode, round.Status, round.CreatedAt, round.UpdatedAt,
	).Scan(&round.ID)
	return translate(err, "create round")
}

// Update applies the non-nil patch fields in a single statement.
func (r *RoundRepository) Update(ctx context.Context, id int64, patch models.RoundPatch) error {
	const query = `UPDATE rounds SET name = COALESCE($1, name), date = COALESCE($2, date),
        time = COALESCE($3, time), mode = COALESCE($4, mode), updated_at = $5 WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, patch.Name, patch.Date, patch.Time, patch.Mode, time.Now().UTC(), id)
	if err != nil {
		return translate(err, "update round")
	}
	return requireAffected(res, "update round")
}

// UpdateStatus sets the advisory round status.
func (r *RoundRepository) UpdateStatus(ctx context.Context, id int64, status models.RoundStatus) error {
	const query = `UPDATE rounds SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return translate(err, "update round status")
	}
	return requireAffected(res, "update round status")
}
