package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/export"
	"github.com/noah-isme/placement-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportResult describes a stored report and its signed download link.
type ExportResult struct {
	ID           string              `json:"id"`
	RelativePath string              `json:"-"`
	Token        string              `json:"token"`
	URL          string              `json:"url"`
	Format       models.ReportFormat `json:"format"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// ExportService renders the selection report and stores it for download.
type ExportService struct {
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers map[models.ReportFormat]datasetRenderer
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		storage: files,
		signer:  signer,
		renderers: map[models.ReportFormat]datasetRenderer{
			models.ReportFormatCSV: export.NewCSVExporter(),
			models.ReportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Supports reports whether format has a renderer.
func (s *ExportService) Supports(format models.ReportFormat) bool {
	_, ok := s.renderers[format]
	return ok
}

// Generate renders roster and summary, stores the file and signs a link to it.
func (s *ExportService) Generate(_ context.Context, roster []models.SelectedStudent, summary models.SelectionSummary, format models.ReportFormat) (*ExportResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	payload, err := renderer.Render(selectionDataset(roster, summary), "Final Selected Students")
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	id := uuid.NewString()
	filename := fmt.Sprintf("selection_%s_%s.%s", s.now().Format("20060102_150405"), id[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, fmt.Errorf("sign report: %w", err)
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("selection report generated", zap.String("report_id", id), zap.String("format", string(format)), zap.Int("rows", len(roster)))
	return &ExportResult{
		ID:           id,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates a download token.
func (s *ExportService) ParseToken(token string) (reportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// ContentType returns the MIME type for a stored report path.
func (s *ExportService) ContentType(relPath string) string {
	for format, renderer := range s.renderers {
		if strings.HasSuffix(relPath, "."+string(format)) {
			return renderer.ContentType()
		}
	}
	return "application/octet-stream"
}

func selectionDataset(roster []models.SelectedStudent, summary models.SelectionSummary) export.Dataset {
	rows := make([]map[string]string, 0, len(roster))
	for _, student := range roster {
		rows = append(rows, map[string]string{
			"Name":       student.Name,
			"Email":      student.Email,
			"Department": student.Department,
			"CGPA":       fmt.Sprintf("%.1f", student.CGPA),
			"Package":    student.Package,
			"Position":   student.Position,
		})
	}
	return export.Dataset{
		Headers: []string{"Name", "Email", "Department", "CGPA", "Package", "Position"},
		Rows:    rows,
		Footer: [][2]string{
			{"Total Selected", fmt.Sprintf("%d", summary.Count)},
			{"Average Package", formatLPA(summary.AveragePackage)},
			{"Highest Package", formatLPA(summary.MaxPackage)},
		},
	}
}

func formatLPA(value float64) string {
	return fmt.Sprintf("%.1f LPA", value)
}
