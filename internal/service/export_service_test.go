package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewExportService(store, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop())
}

func sampleRoster() []models.SelectedStudent {
	return []models.SelectedStudent{
		{ID: 1, Name: "Rahul Sharma", Email: "rahul.s@example.com", Department: "Computer Science", CGPA: 8.7, Package: "12 LPA", Position: "Software Engineer"},
		{ID: 2, Name: "Priya Patel", Email: "priya.p@example.com", Department: "Information Technology", CGPA: 9.2, Package: "14 LPA", Position: "Frontend Developer"},
	}
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc := newExportServiceForTest(t)
	roster := sampleRoster()

	result, err := svc.Generate(context.Background(), roster, models.Summarize(roster), models.ReportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	assert.Equal(t, "/api/v1/export/"+result.Token, result.URL)

	_, relPath, _, err := svc.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.RelativePath, relPath)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Equal(t, "Name,Email,Department,CGPA,Package,Position", lines[0])
	assert.Contains(t, lines[1], "Rahul Sharma")
	assert.Contains(t, string(content), "Average Package,13.0 LPA")
	assert.Contains(t, string(content), "Highest Package,14.0 LPA")
	assert.Equal(t, "text/csv", strings.Split(svc.ContentType(relPath), ";")[0])
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), nil, models.SelectionSummary{}, models.ReportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatPDF, result.Format)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Equal(t, "application/pdf", svc.ContentType(result.RelativePath))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(t)

	assert.False(t, svc.Supports("xlsx"))
	_, err := svc.Generate(context.Background(), sampleRoster(), models.SelectionSummary{}, "xlsx")
	assert.Error(t, err)
}
