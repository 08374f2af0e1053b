package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
}

// CreateStudentRequest holds payload for registering a student.
type CreateStudentRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Department string  `json:"department"`
	CGPA       float64 `json:"cgpa" validate:"gte=0,lte=10"`
	Package    string  `json:"package"`
	Position   string  `json:"position"`
}

// StudentService handles the student master records shared across rounds.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students matching filter.Search.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list students")
	}
	out := make([]models.Student, 0, len(students))
	for _, student := range students {
		if student.Matches(filter.Search) {
			out = append(out, student)
		}
	}
	return out, nil
}

// Get returns student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	if req.Package != "" {
		if _, ok := models.ParsePackage(req.Package); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "package must be a number in LPA or Cr, e.g. \"12 LPA\"")
		}
	}
	student := &models.Student{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		CGPA:       req.CGPA,
		Package:    req.Package,
		Position:   req.Position,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}
	s.logger.Info("student registered", zap.Int64("student_id", student.ID))
	return student, nil
}
