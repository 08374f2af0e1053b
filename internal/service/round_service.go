package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// maxStatusAttempts bounds how often a lenient status change re-reads an
// enrollment that moved underneath it.
const maxStatusAttempts = 3

type roundRepository interface {
	List(ctx context.Context) ([]models.Round, error)
	FindByID(ctx context.Context, id int64) (*models.Round, error)
	Create(ctx context.Context, round *models.Round) error
	Update(ctx context.Context, id int64, patch models.RoundPatch) error
	UpdateStatus(ctx context.Context, id int64, status models.RoundStatus) error
}

type enrollmentRepository interface {
	Find(ctx context.Context, roundID, studentID int64) (*models.Enrollment, error)
	ListByRound(ctx context.Context, roundID int64) ([]models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, roundID, studentID int64, from, to models.EnrollmentStatus) error
}

// CreateRoundRequest schedules a new round. Mode defaults to Online. Every
// field may be empty.
type CreateRoundRequest struct {
	Name string           `json:"name"`
	Date string           `json:"date"`
	Time string           `json:"time"`
	Mode models.RoundMode `json:"mode"`
}

// UpdateRoundRequest replaces the provided fields; nil fields are kept.
type UpdateRoundRequest struct {
	Name *string           `json:"name"`
	Date *string           `json:"date"`
	Time *string           `json:"time"`
	Mode *models.RoundMode `json:"mode"`
}

// RoundStatusRequest sets the advisory round label.
type RoundStatusRequest struct {
	Status models.RoundStatus `json:"status" validate:"required"`
}

// StudentStatusRequest sets one student's outcome in a round.
type StudentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required"`
}

// EnrollRequest adds an existing student to a round.
type EnrollRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

// AdvanceRequest names the round that receives the selected students.
type AdvanceRequest struct {
	TargetRoundID int64 `json:"target_round_id" validate:"required,gt=0"`
}

// RoundServiceConfig tunes the pipeline policy.
type RoundServiceConfig struct {
	// StrictTransitions rejects moving a student straight between selected
	// and rejected without passing through pending.
	StrictTransitions bool
}

// RoundService is the round pipeline.
type RoundService struct {
	rounds      roundRepository
	enrollments enrollmentRepository
	students    studentRepository
	dispatcher  notificationDispatcher
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         RoundServiceConfig
}

// NewRoundService constructs the round pipeline.
func NewRoundService(
	rounds roundRepository,
	enrollments enrollmentRepository,
	students studentRepository,
	dispatcher notificationDispatcher,
	cache *CacheService,
	metrics *MetricsService,
	cfg RoundServiceConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *RoundService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoundService{
		rounds:      rounds,
		enrollments: enrollments,
		students:    students,
		dispatcher:  dispatcher,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// List returns rounds in insertion order.
func (s *RoundService) List(ctx context.Context) ([]dto.RoundSummary, error) {
	rounds, err := s.rounds.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list rounds")
	}
	out := make([]dto.RoundSummary, 0, len(rounds))
	for _, round := range rounds {
		out = append(out, dto.NewRoundSummary(round))
	}
	return out, nil
}

// Get returns a round snapshot.
func (s *RoundService) Get(ctx context.Context, id int64) (*dto.RoundSummary, error) {
	round, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := dto.NewRoundSummary(*round)
	return &summary, nil
}

// Enrollments returns the raw participation records of a round, including
// their timestamps.
func (s *RoundService) Enrollments(ctx context.Context, roundID int64) ([]models.Enrollment, error) {
	if _, err := s.load(ctx, roundID); err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByRound(ctx, roundID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return enrollments, nil
}

// Create appends an upcoming round with an empty roster. The new round becomes
// the terminal round, so cached selections are dropped.
func (s *RoundService) Create(ctx context.Context, req CreateRoundRequest) (*dto.RoundSummary, error) {
	if req.Mode == "" {
		req.Mode = models.RoundModeOnline
	}
	if !req.Mode.IsValid() {
		return nil, invalidMode(req.Mode)
	}
	round := &models.Round{
		Name:   req.Name,
		Date:   req.Date,
		Time:   req.Time,
		Mode:   req.Mode,
		Status: models.RoundStatusUpcoming,
	}
	if err := s.rounds.Create(ctx, round); err != nil {
		return nil, appErrors.Internal(err, "failed to create round")
	}
	s.invalidateSelection(ctx)
	s.logger.Info("round created", zap.Int64("round_id", round.ID), zap.String("name", round.Name))
	return s.Get(ctx, round.ID)
}

// Update replaces name, date, time and mode. Status and roster are kept.
func (s *RoundService) Update(ctx context.Context, id int64, req UpdateRoundRequest) (*dto.RoundSummary, error) {
	if req.Mode != nil && !req.Mode.IsValid() {
		return nil, invalidMode(*req.Mode)
	}
	patch := models.RoundPatch{Name: req.Name, Date: req.Date, Time: req.Time, Mode: req.Mode}
	if err := s.rounds.Update(ctx, id, patch); err != nil {
		return nil, s.mapError(err, "round not found", "failed to update round")
	}
	return s.Get(ctx, id)
}

// SetStatus sets the advisory status label of a round.
func (s *RoundService) SetStatus(ctx context.Context, id int64, req RoundStatusRequest) (*dto.RoundSummary, error) {
	if !req.Status.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid round status %q", req.Status))
	}
	if err := s.rounds.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, s.mapError(err, "round not found", "failed to update round status")
	}
	return s.Get(ctx, id)
}

// SetStudentStatus records a student's outcome in a round.
func (s *RoundService) SetStudentStatus(ctx context.Context, roundID, studentID int64, req StudentStatusRequest) (*dto.RoundSummary, error) {
	if !req.Status.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid student status %q", req.Status))
	}
	if _, err := s.load(ctx, roundID); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		enrollment, err := s.enrollments.Find(ctx, roundID, studentID)
		if err != nil {
			return nil, s.mapError(err, "student not enrolled in round", "failed to load enrollment")
		}
		if s.cfg.StrictTransitions && !enrollment.Status.CanTransitionTo(req.Status) {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("cannot move student from %s to %s", enrollment.Status, req.Status))
		}
		if enrollment.Status == req.Status {
			break
		}
		err = s.enrollments.UpdateStatus(ctx, roundID, studentID, enrollment.Status, req.Status)
		if errors.Is(err, repository.ErrStale) && !s.cfg.StrictTransitions && attempt < maxStatusAttempts {
			// Without a transition table any target is legal from the fresh status.
			continue
		}
		if err != nil {
			return nil, s.mapError(err, "student not enrolled in round", "failed to update student status")
		}
		s.metrics.RecordStatusTransition(enrollment.Status, req.Status)
		s.invalidateSelection(ctx)
		break
	}
	return s.Get(ctx, roundID)
}

// Enroll adds a registered student to a round as pending.
func (s *RoundService) Enroll(ctx context.Context, roundID int64, req EnrollRequest) (*dto.RoundSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "student_id is required")
	}
	if _, err := s.load(ctx, roundID); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, s.mapError(err, "student not found", "failed to load student")
	}
	enrollment := &models.Enrollment{RoundID: roundID, StudentID: req.StudentID, Status: models.EnrollmentStatusPending}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, s.mapError(err, "round or student not found", "failed to enroll student")
	}
	s.invalidateSelection(ctx)
	return s.Get(ctx, roundID)
}

// Advance enrolls every selected student of the source round as pending in
// the target round. Students already in the target are skipped.
func (s *RoundService) Advance(ctx context.Context, fromID int64, req AdvanceRequest) (*dto.AdvanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "target_round_id is required")
	}
	if req.TargetRoundID == fromID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target round must differ from source round")
	}
	source, err := s.load(ctx, fromID)
	if err != nil {
		return nil, err
	}
	target, err := s.load(ctx, req.TargetRoundID)
	if err != nil {
		return nil, err
	}

	result := &dto.AdvanceResult{Enrolled: []int64{}, Skipped: []int64{}}
	for _, entry := range source.Students {
		if entry.Status != models.EnrollmentStatusSelected {
			continue
		}
		if _, exists := target.Entry(entry.ID); exists {
			result.Skipped = append(result.Skipped, entry.ID)
			continue
		}
		enrollment := &models.Enrollment{RoundID: target.ID, StudentID: entry.ID, Status: models.EnrollmentStatusPending}
		if err := s.enrollments.Create(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				result.Skipped = append(result.Skipped, entry.ID)
				continue
			}
			return nil, appErrors.Internal(err, "failed to advance students")
		}
		result.Enrolled = append(result.Enrolled, entry.ID)
	}
	if len(result.Enrolled) > 0 {
		s.invalidateSelection(ctx)
	}
	s.logger.Info("students advanced",
		zap.Int64("from_round", fromID),
		zap.Int64("to_round", target.ID),
		zap.Int("enrolled", len(result.Enrolled)),
		zap.Int("skipped", len(result.Skipped)),
	)

	summary, err := s.Get(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	result.Round = *summary
	return result, nil
}

// SendResults announces the round's shortlist. It never changes the round.
func (s *RoundService) SendResults(ctx context.Context, id int64) (*models.Notification, error) {
	round, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.dispatcher == nil {
		return nil, appErrors.Clone(appErrors.ErrUnsupported, "notifications are not configured")
	}
	shortlisted := make([]string, 0, round.SelectedCount())
	for _, entry := range round.Students {
		if entry.Status == models.EnrollmentStatusSelected {
			shortlisted = append(shortlisted, fmt.Sprintf("- %s <%s>", entry.Name, entry.Email))
		}
	}
	appendix := fmt.Sprintf("Shortlisted (%d of %d):\n%s", len(shortlisted), round.TotalCount(), strings.Join(shortlisted, "\n"))
	return s.dispatcher.Dispatch(ctx, DispatchRequest{
		Kind:      models.TemplateRoundCompletion,
		Action:    models.DispatchSend,
		Reference: fmt.Sprintf("round:%d", round.ID),
		Values: map[string]string{
			"Round Name":     round.Name,
			"Date & Time":    strings.TrimSpace(round.Date + " " + round.Time),
			"Online/Offline": string(round.Mode),
		},
		Appendix: strings.TrimRight(appendix, "\n"),
	})
}

func (s *RoundService) load(ctx context.Context, id int64) (*models.Round, error) {
	round, err := s.rounds.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "round not found", "failed to load round")
	}
	return round, nil
}

func (s *RoundService) mapError(err error, notFound, internal string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, "student already enrolled in round")
	case errors.Is(err, repository.ErrStale):
		return appErrors.Clone(appErrors.ErrConflict, "student status changed concurrently, reload and retry")
	default:
		return appErrors.Internal(err, internal)
	}
}

func (s *RoundService) invalidateSelection(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, selectionCachePattern); err != nil {
		s.logger.Warn("selection cache not invalidated", zap.Error(err))
	}
}

func invalidMode(mode models.RoundMode) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("mode must be Online or Offline, got %q", mode))
}
