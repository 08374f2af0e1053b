package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

const enrollmentColumns = "id, round_id, student_id, status, created_at, updated_at"

// EnrollmentRepository manages round participation records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the enrollment of a student in a round.
func (r *EnrollmentRepository) Find(ctx context.Context, roundID, studentID int64) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE round_id = $1 AND student_id = $2"
	if err := r.db.GetContext(ctx, &enrollment, query, roundID, studentID); err != nil {
		return nil, translate(err, "find enrollment")
	}
	return &enrollment, nil
}

// ListByRound returns a round's enrollments in enrollment order.
func (r *EnrollmentRepository) ListByRound(ctx context.Context, roundID int64) ([]models.Enrollment, error) {
	enrollments := make([]models.Enrollment, 0)
	query := "SELECT " + enrollmentColumns + " FROM enrollments WHERE round_id = $1 ORDER BY id ASC"
	if err := r.db.SelectContext(ctx, &enrollments, query, roundID); err != nil {
		return nil, translate(err, "list enrollments")
	}
	return enrollments, nil
}

// Create inserts an enrollment. Duplicate (round, student) pairs surface as
// ErrDuplicate, missing rounds or students as ErrNotFound.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	now := time.Now().UTC()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (round_id, student_id, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		enrollment.RoundID, enrollment.StudentID, enrollment.Status, enrollment.CreatedAt, enrollment.UpdatedAt,
	).Scan(&enrollment.ID)
	return translate(err, "create enrollment")
}

// UpdateStatus moves one enrollment from one status to another. It returns
// ErrStale when the stored status is no longer from and ErrNotFound when the
// enrollment does not exist.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, roundID, studentID int64, from, to models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $1, updated_at = $2
        WHERE round_id = $3 AND student_id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), roundID, studentID, from)
	if err != nil {
		return translate(err, "update enrollment")
	}
	if err := requireAffected(res, "update enrollment"); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, findErr := r.Find(ctx, roundID, studentID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("update enrollment: %w", ErrStale)
	}
	return nil
}
