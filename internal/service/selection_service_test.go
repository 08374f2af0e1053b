package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/storage"
)

// finalRound builds: screening (a, b selected) -> interview (a selected, b rejected, c selected).
func finalRound(t *testing.T, f *pipelineFixture) (a, b, c *models.Student) {
	t.Helper()
	ctx := context.Background()
	a = f.addStudent(t, "ananya", "15 LPA")
	b = f.addStudent(t, "arjun", "13.5 LPA")
	c = f.addStudent(t, "neha", "11 LPA")

	screening, err := f.rounds.Create(ctx, CreateRoundRequest{Name: "Screening"})
	require.NoError(t, err)
	interview, err := f.rounds.Create(ctx, CreateRoundRequest{Name: "Interview", Mode: models.RoundModeOffline})
	require.NoError(t, err)

	for _, s := range []*models.Student{a, b} {
		_, err = f.rounds.Enroll(ctx, screening.ID, EnrollRequest{StudentID: s.ID})
		require.NoError(t, err)
		_, err = f.rounds.SetStudentStatus(ctx, screening.ID, s.ID, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
		require.NoError(t, err)
	}
	_, err = f.rounds.Advance(ctx, screening.ID, AdvanceRequest{TargetRoundID: interview.ID})
	require.NoError(t, err)
	_, err = f.rounds.Enroll(ctx, interview.ID, EnrollRequest{StudentID: c.ID})
	require.NoError(t, err)

	for id, status := range map[int64]models.EnrollmentStatus{
		a.ID: models.EnrollmentStatusSelected,
		b.ID: models.EnrollmentStatusRejected,
		c.ID: models.EnrollmentStatusSelected,
	} {
		_, err = f.rounds.SetStudentStatus(ctx, interview.ID, id, StudentStatusRequest{Status: status})
		require.NoError(t, err)
	}
	return a, b, c
}

func TestSelectionServiceEmptyPipeline(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})

	report, _, err := f.selection.Report(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, report.Students)
	assert.Empty(t, report.Students)
	assert.Equal(t, models.SelectionSummary{Count: 0, AveragePackage: 0, MaxPackage: 0}, report.Summary)
}

func TestSelectionServiceDerivesFromTerminalRound(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})
	a, _, c := finalRound(t, f)

	roster, _, err := f.selection.FinalRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, a.ID, roster[0].ID)
	assert.Equal(t, c.ID, roster[1].ID)
	assert.Equal(t, "Computer Science", roster[0].Department)

	report, _, err := f.selection.Report(context.Background(), "NEHA")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, "neha", report.Students[0].Name)
	assert.Equal(t, 2, report.Summary.Count)
	assert.InDelta(t, 13.0, report.Summary.AveragePackage, 0.0001)
	assert.InDelta(t, 15.0, report.Summary.MaxPackage, 0.0001)

	_, err = f.rounds.Create(context.Background(), CreateRoundRequest{Name: "HR"})
	require.NoError(t, err)
	roster, _, err = f.selection.FinalRoster(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestSearchRosterMatchesAcrossFields(t *testing.T) {
	roster := []models.SelectedStudent{
		{Name: "Rahul Sharma", Email: "rahul.s@example.com", Department: "Computer Science", Position: "Software Engineer"},
		{Name: "Vikram Singh", Email: "vikram.s@example.com", Department: "Electronics", Position: "Hardware Engineer"},
	}

	assert.Len(t, SearchRoster(roster, "engineer"), 2)
	assert.Len(t, SearchRoster(roster, "ELECTRONICS"), 1)
	assert.Len(t, SearchRoster(roster, "rahul.s@"), 1)
	assert.Empty(t, SearchRoster(roster, "mechanical"))
	assert.Len(t, SearchRoster(roster, ""), 2)
}

func TestSelectionServiceCachesRosterUntilPipelineChanges(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{cache: newMemoryCacheRepo()})
	a, _, _ := finalRound(t, f)
	ctx := context.Background()

	_, hit, err := f.selection.FinalRoster(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	roster, hit, err := f.selection.FinalRoster(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, roster, 2)

	_, err = f.rounds.SetStudentStatus(ctx, 2, a.ID, StudentStatusRequest{Status: models.EnrollmentStatusPending})
	require.NoError(t, err)

	roster, hit, err = f.selection.FinalRoster(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, roster, 1)

	snapshot := f.metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
}

func TestSelectionServiceExportDisabled(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})

	_, err := f.selection.ExportReport(context.Background(), ExportRequest{Format: models.ReportFormatCSV})
	assert.True(t, errors.Is(err, appErrors.ErrUnsupported))
}

func TestSelectionServiceExportCSV(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	exporter := NewExportService(files, storage.NewSignedURLSigner("secret", time.Hour), ExportConfig{APIPrefix: "/api/v1"}, nil)

	f := newPipelineFixture(t, fixtureOptions{exporter: exporter})
	finalRound(t, f)
	ctx := context.Background()

	_, err = f.selection.ExportReport(ctx, ExportRequest{Format: "xlsx"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	result, err := f.selection.ExportReport(ctx, ExportRequest{Format: models.ReportFormatCSV})
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/export/")

	reportID, relPath, _, err := exporter.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.ID, reportID)
	assert.Equal(t, "text/csv", exporter.ContentType(relPath))

	content, err := os.ReadFile(filepath.Join(dir, relPath))
	require.NoError(t, err)
	assert.Contains(t, string(content), "ananya@example.com")
	assert.Contains(t, string(content), "Average Package")
	assert.NotContains(t, string(content), "arjun@example.com")
}

func TestSelectionServiceSendToPlacementOfficer(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})
	finalRound(t, f)

	notification, err := f.selection.SendToPlacementOfficer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.TemplateFinalSelection, notification.Kind)
	assert.Contains(t, notification.Body, "👥 **Total Selected:** 2")
	assert.Contains(t, notification.Body, "Highest Package: 15.0 LPA")
	assert.Contains(t, notification.Body, "Average Package: 13.0 LPA")
}
