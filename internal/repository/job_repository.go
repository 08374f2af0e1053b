package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/internal/models"
)

const jobColumns = "id, title, company, location, post_date, description, eligibility, salary, created_at"

// JobRepository manages persistence for job postings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs a JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// List returns every job, newest first.
func (r *JobRepository) List(ctx context.Context) ([]models.Job, error) {
	jobs := make([]models.Job, 0)
	if err := r.db.SelectContext(ctx, &jobs, "SELECT "+jobColumns+" FROM jobs ORDER BY id DESC"); err != nil {
		return nil, translate(err, "list jobs")
	}
	return jobs, nil
}

// FindByID fetches a job by id.
func (r *JobRepository) FindByID(ctx context.Context, id int64) (*models.Job, error) {
	var job models.Job
	if err := r.db.GetContext(ctx, &job, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id); err != nil {
		return nil, translate(err, "find job")
	}
	return &job, nil
}

// Create inserts a job and stores the generated id on it.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO jobs (title, company, location, post_date, description, eligibility, salary, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		job.Title, job.Company, job.Location, job.PostDate, job.Description, job.Eligibility, job.Salary, job.CreatedAt,
	).Scan(&job.ID)
	return translate(err, "create job")
}
