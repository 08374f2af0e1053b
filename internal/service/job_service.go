package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type jobRepository interface {
	List(ctx context.Context) ([]models.Job, error)
	FindByID(ctx context.Context, id int64) (*models.Job, error)
	Create(ctx context.Context, job *models.Job) error
}

// CreateJobRequest carries a new posting. Every key must be present in the
// payload; empty strings are accepted.
type CreateJobRequest struct {
	Title       *string `json:"title" validate:"required"`
	Company     *string `json:"company" validate:"required"`
	Location    *string `json:"location" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Eligibility *bool   `json:"eligibility" validate:"required"`
	Salary      *string `json:"salary" validate:"required"`
}

// JobService is the job registry.
type JobService struct {
	repo       jobRepository
	dispatcher notificationDispatcher
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewJobService constructs the job registry.
func NewJobService(repo jobRepository, dispatcher notificationDispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		repo:       repo,
		dispatcher: dispatcher,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns jobs newest first, narrowed by filter.Search when set.
func (s *JobService) List(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list jobs")
	}
	out := make([]models.Job, 0, len(jobs))
	for _, job := range jobs {
		if job.Matches(filter.Search) {
			out = append(out, job)
		}
	}
	return out, nil
}

// Search matches term against title, company or location.
func (s *JobService) Search(ctx context.Context, term string) ([]models.Job, error) {
	return s.List(ctx, models.JobFilter{Search: term})
}

// Get returns a single job.
func (s *JobService) Get(ctx context.Context, id int64) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Internal(err, "failed to load job")
	}
	return job, nil
}

// Create posts a job dated today and announces it.
func (s *JobService) Create(ctx context.Context, req CreateJobRequest) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "title, company, location, description, eligibility and salary are required")
	}
	job := &models.Job{
		Title:       *req.Title,
		Company:     *req.Company,
		Location:    *req.Location,
		PostDate:    s.now().Format(models.PostDateLayout),
		Description: *req.Description,
		Eligibility: *req.Eligibility,
		Salary:      *req.Salary,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Internal(err, "failed to create job")
	}
	s.metrics.RecordJobCreated()
	s.logger.Info("job posted", zap.Int64("job_id", job.ID), zap.String("company", job.Company))
	s.announce(ctx, job)
	return job, nil
}

func (s *JobService) announce(ctx context.Context, job *models.Job) {
	if s.dispatcher == nil {
		return
	}
	_, err := s.dispatcher.Dispatch(ctx, DispatchRequest{
		Kind:      models.TemplateJobPosting,
		Action:    models.DispatchSend,
		Reference: fmt.Sprintf("job:%d", job.ID),
		Values: map[string]string{
			"Job Title":    job.Title,
			"Job Name":     job.Title,
			"Company Name": job.Company,
			"Job Location": job.Location,
			"Date":         job.PostDate,
		},
	})
	if err != nil {
		s.logger.Warn("job announcement failed", zap.Int64("job_id", job.ID), zap.Error(err))
	}
}
