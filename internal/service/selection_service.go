package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

const selectionRosterKey = "selection:roster"

type roundLister interface {
	List(ctx context.Context) ([]models.Round, error)
}

type studentLister interface {
	List(ctx context.Context) ([]models.Student, error)
}

// ExportRequest selects the report format.
type ExportRequest struct {
	Format models.ReportFormat `json:"format" validate:"required"`
}

// SelectionService projects the final roster from the terminal round. Nothing
// is stored; every read recomputes or reads through the cache.
type SelectionService struct {
	rounds     roundLister
	students   studentLister
	cache      *CacheService
	dispatcher notificationDispatcher
	exporter   *ExportService
	logger     *zap.Logger
}

// NewSelectionService constructs the aggregator. A nil exporter disables
// report export.
func NewSelectionService(rounds roundLister, students studentLister, cache *CacheService, dispatcher notificationDispatcher, exporter *ExportService, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{
		rounds:     rounds,
		students:   students,
		cache:      cache,
		dispatcher: dispatcher,
		exporter:   exporter,
		logger:     logger,
	}
}

// FinalRoster returns the selected students of the last round joined with
// their master records. The bool reports a cache hit.
func (s *SelectionService) FinalRoster(ctx context.Context) ([]models.SelectedStudent, bool, error) {
	var cached []models.SelectedStudent
	if hit, _ := s.cache.Get(ctx, selectionRosterKey, &cached); hit {
		return cached, true, nil
	}

	rounds, err := s.rounds.List(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load rounds")
	}
	roster := make([]models.SelectedStudent, 0)
	if len(rounds) == 0 {
		return roster, false, nil
	}
	terminal := rounds[len(rounds)-1]

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to load students")
	}
	byID := make(map[int64]models.Student, len(students))
	for _, student := range students {
		byID[student.ID] = student
	}

	for _, entry := range terminal.Students {
		if entry.Status != models.EnrollmentStatusSelected {
			continue
		}
		student, ok := byID[entry.ID]
		if !ok {
			s.logger.Warn("selected student missing from registry", zap.Int64("student_id", entry.ID))
			continue
		}
		roster = append(roster, models.SelectedStudent{
			ID:         student.ID,
			Name:       student.Name,
			Email:      student.Email,
			Department: student.Department,
			CGPA:       student.CGPA,
			Package:    student.Package,
			Position:   student.Position,
		})
	}

	_ = s.cache.Set(ctx, selectionRosterKey, roster, 0)
	return roster, false, nil
}

// Report returns the roster narrowed by term with the whole-roster summary.
func (s *SelectionService) Report(ctx context.Context, term string) (*dto.SelectionReport, bool, error) {
	roster, hit, err := s.FinalRoster(ctx)
	if err != nil {
		return nil, false, err
	}
	matched := SearchRoster(roster, term)
	return &dto.SelectionReport{
		Students: matched,
		Summary:  models.Summarize(roster),
		Total:    len(roster),
		Matched:  len(matched),
	}, hit, nil
}

// SearchRoster filters roster by name, email, department or position.
func SearchRoster(roster []models.SelectedStudent, term string) []models.SelectedStudent {
	out := make([]models.SelectedStudent, 0, len(roster))
	for _, student := range roster {
		if student.Matches(term) {
			out = append(out, student)
		}
	}
	return out
}

// ExportReport renders the full roster and returns a signed download link.
func (s *SelectionService) ExportReport(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, appErrors.Clone(appErrors.ErrUnsupported, "report export is disabled")
	}
	if req.Format == "" {
		req.Format = models.ReportFormatCSV
	}
	if !s.exporter.Supports(req.Format) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", req.Format))
	}
	roster, _, err := s.FinalRoster(ctx)
	if err != nil {
		return nil, err
	}
	result, err := s.exporter.Generate(ctx, roster, models.Summarize(roster), req.Format)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to export selection report")
	}
	return result, nil
}

// SendToPlacementOfficer dispatches the final selection with its summary.
func (s *SelectionService) SendToPlacementOfficer(ctx context.Context) (*models.Notification, error) {
	if s.dispatcher == nil {
		return nil, appErrors.Clone(appErrors.ErrUnsupported, "notifications are not configured")
	}
	roster, _, err := s.FinalRoster(ctx)
	if err != nil {
		return nil, err
	}
	summary := models.Summarize(roster)
	appendix := fmt.Sprintf("Total Selected: %d\nAverage Package: %s\nHighest Package: %s",
		summary.Count, formatLPA(summary.AveragePackage), formatLPA(summary.MaxPackage))
	return s.dispatcher.Dispatch(ctx, DispatchRequest{
		Kind:      models.TemplateFinalSelection,
		Action:    models.DispatchSend,
		Reference: "selection",
		Values: map[string]string{
			"Number of Students": fmt.Sprintf("%d", summary.Count),
			"Package Details":    fmt.Sprintf("up to %s, average %s", formatLPA(summary.MaxPackage), formatLPA(summary.AveragePackage)),
		},
		Appendix: appendix,
	})
}
