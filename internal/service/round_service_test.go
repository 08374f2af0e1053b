package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

func TestRoundServiceSampleRoundAggregates(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})

	rounds, err := f.rounds.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rounds, 4)
	assert.Equal(t, "Resume Screening", rounds[0].Name)
	assert.Equal(t, 4, rounds[0].SelectedCount)
	assert.Equal(t, 5, rounds[0].TotalCount)
	assert.False(t, rounds[0].IsEmpty)
	assert.Equal(t, "HR Interview", rounds[3].Name)
	assert.True(t, rounds[3].IsEmpty)
}

func TestRoundServiceCreateTechnicalInterview(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{})
	ctx := context.Background()

	created, err := f.rounds.Create(ctx, CreateRoundRequest{Name: "Technical Interview", Date: "2024-10-25", Mode: models.RoundModeOffline})
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusUpcoming, created.Status)
	assert.Empty(t, created.Students)

	rounds, err := f.rounds.List(ctx)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "Technical Interview", rounds[0].Name)
	assert.Equal(t, models.RoundStatusUpcoming, rounds[0].Status)
	assert.NotNil(t, rounds[0].Students)
	assert.Len(t, rounds[0].Students, 0)

	defaulted, err := f.rounds.Create(ctx, CreateRoundRequest{Name: "Group Discussion"})
	require.NoError(t, err)
	assert.Equal(t, models.RoundModeOnline, defaulted.Mode)
	assert.Greater(t, defaulted.ID, created.ID)

	_, err = f.rounds.Create(ctx, CreateRoundRequest{Name: "Bad", Mode: "Hybrid"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	unnamed, err := f.rounds.Create(ctx, CreateRoundRequest{})
	require.NoError(t, err)
	assert.Empty(t, unnamed.Name)
	assert.Equal(t, models.RoundModeOnline, unnamed.Mode)
}

func TestRoundServiceUpdateIsFieldScoped(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	before, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)

	after, err := f.rounds.Update(ctx, 1, UpdateRoundRequest{Name: strPtr("X")})
	require.NoError(t, err)
	assert.Equal(t, "X", after.Name)
	assert.Equal(t, before.Date, after.Date)
	assert.Equal(t, before.Mode, after.Mode)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.Students, after.Students)

	_, err = f.rounds.Update(ctx, 99, UpdateRoundRequest{Name: strPtr("X")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	bad := models.RoundMode("Hybrid")
	_, err = f.rounds.Update(ctx, 1, UpdateRoundRequest{Mode: &bad})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

type barrierRounds struct {
	*repository.MemoryRoundRepository
	arrived sync.WaitGroup
}

func (r *barrierRounds) Update(ctx context.Context, id int64, patch models.RoundPatch) error {
	r.arrived.Done()
	r.arrived.Wait()
	return r.MemoryRoundRepository.Update(ctx, id, patch)
}

func TestRoundServiceConcurrentUpdatesKeepBothFields(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()
	rounds := &barrierRounds{MemoryRoundRepository: f.store.Rounds()}
	rounds.arrived.Add(2)
	svc := NewRoundService(rounds, f.store.Enrollments(), f.store.Students(), f.templates, f.cache, f.metrics,
		RoundServiceConfig{}, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	requests := []UpdateRoundRequest{{Name: strPtr("Online Assessment")}, {Date: strPtr("2024-10-22")}}
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req UpdateRoundRequest) {
			defer wg.Done()
			_, errs[i] = svc.Update(ctx, 2, req)
		}(i, req)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	round, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Online Assessment", round.Name)
	assert.Equal(t, "2024-10-22", round.Date)
}

type interleavedEnrollments struct {
	*repository.MemoryEnrollmentRepository
	afterFind func()
}

func (r *interleavedEnrollments) Find(ctx context.Context, roundID, studentID int64) (*models.Enrollment, error) {
	enrollment, err := r.MemoryEnrollmentRepository.Find(ctx, roundID, studentID)
	if hook := r.afterFind; hook != nil {
		r.afterFind = nil
		hook()
	}
	return enrollment, err
}

func TestRoundServiceStrictStatusChangeDetectsInterleavedWrite(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true, strict: true})
	ctx := context.Background()
	enrollments := &interleavedEnrollments{MemoryEnrollmentRepository: f.store.Enrollments()}
	enrollments.afterFind = func() {
		_, err := f.rounds.SetStudentStatus(ctx, 2, 1, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
		require.NoError(t, err)
	}
	svc := NewRoundService(f.store.Rounds(), enrollments, f.store.Students(), f.templates, f.cache, f.metrics,
		RoundServiceConfig{StrictTransitions: true}, nil, nil)

	_, err := svc.SetStudentStatus(ctx, 2, 1, StudentStatusRequest{Status: models.EnrollmentStatusRejected})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	round, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	entry, ok := round.Entry(1)
	require.True(t, ok)
	assert.Equal(t, models.EnrollmentStatusSelected, entry.Status)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().StatusTransitions)
}

func TestRoundServiceLenientStatusChangeRetriesInterleavedWrite(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()
	enrollments := &interleavedEnrollments{MemoryEnrollmentRepository: f.store.Enrollments()}
	enrollments.afterFind = func() {
		_, err := f.rounds.SetStudentStatus(ctx, 2, 1, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
		require.NoError(t, err)
	}
	svc := NewRoundService(f.store.Rounds(), enrollments, f.store.Students(), f.templates, f.cache, f.metrics,
		RoundServiceConfig{}, nil, nil)

	round, err := svc.SetStudentStatus(ctx, 2, 1, StudentStatusRequest{Status: models.EnrollmentStatusRejected})
	require.NoError(t, err)
	entry, ok := round.Entry(1)
	require.True(t, ok)
	assert.Equal(t, models.EnrollmentStatusRejected, entry.Status)
	assert.Equal(t, uint64(2), f.metrics.Snapshot().StatusTransitions)
}

func TestRoundServiceStatusResetRoundTrip(t *testing.T) {
	for _, strict := range []bool{false, true} {
		f := newPipelineFixture(t, fixtureOptions{seed: true, strict: strict})
		ctx := context.Background()
		const roundID, studentID = int64(2), int64(1)

		var last string
		for _, status := range []models.EnrollmentStatus{
			models.EnrollmentStatusSelected,
			models.EnrollmentStatusPending,
			models.EnrollmentStatusRejected,
		} {
			round, err := f.rounds.SetStudentStatus(ctx, roundID, studentID, StudentStatusRequest{Status: status})
			require.NoError(t, err)
			entry, ok := round.Entry(studentID)
			require.True(t, ok)
			last = string(entry.Status)
		}
		assert.Equal(t, string(models.EnrollmentStatusRejected), last)
		assert.Equal(t, uint64(3), f.metrics.Snapshot().StatusTransitions)
	}
}

func TestRoundServiceStrictPolicyRequiresReset(t *testing.T) {
	ctx := context.Background()

	lenient := newPipelineFixture(t, fixtureOptions{seed: true})
	round, err := lenient.rounds.SetStudentStatus(ctx, 1, 1, StudentStatusRequest{Status: models.EnrollmentStatusRejected})
	require.NoError(t, err)
	entry, _ := round.Entry(1)
	assert.Equal(t, models.EnrollmentStatusRejected, entry.Status)

	strict := newPipelineFixture(t, fixtureOptions{seed: true, strict: true})
	_, err = strict.rounds.SetStudentStatus(ctx, 1, 1, StudentStatusRequest{Status: models.EnrollmentStatusRejected})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	unchanged, err := strict.rounds.Get(ctx, 1)
	require.NoError(t, err)
	entry, _ = unchanged.Entry(1)
	assert.Equal(t, models.EnrollmentStatusSelected, entry.Status)

	_, err = strict.rounds.SetStudentStatus(ctx, 1, 1, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
	assert.NoError(t, err)
}

func TestRoundServiceSetStudentStatusRejectsUnknownValues(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	before, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)

	_, err = f.rounds.SetStudentStatus(ctx, 1, 1, StudentStatusRequest{Status: "waitlisted"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	after, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before.Students, after.Students)

	_, err = f.rounds.SetStudentStatus(ctx, 42, 1, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = f.rounds.SetStudentStatus(ctx, 3, 1, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRoundServiceSnapshotsAreIndependent(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	snapshot, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)
	snapshot.Students[0].Status = models.EnrollmentStatusRejected

	_, err = f.rounds.SetStudentStatus(ctx, 1, 2, StudentStatusRequest{Status: models.EnrollmentStatusPending})
	require.NoError(t, err)

	fresh, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusSelected, fresh.Students[0].Status)
	assert.Equal(t, models.EnrollmentStatusPending, fresh.Students[1].Status)
	assert.Equal(t, 3, fresh.SelectedCount)
}

func TestRoundServiceEnrollAndAdvance(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	_, err := f.rounds.Enroll(ctx, 2, EnrollRequest{StudentID: 1})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	_, err = f.rounds.Enroll(ctx, 2, EnrollRequest{StudentID: 404})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.rounds.SetStudentStatus(ctx, 2, 1, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
	require.NoError(t, err)
	_, err = f.rounds.SetStudentStatus(ctx, 2, 4, StudentStatusRequest{Status: models.EnrollmentStatusSelected})
	require.NoError(t, err)
	_, err = f.rounds.Enroll(ctx, 3, EnrollRequest{StudentID: 4})
	require.NoError(t, err)

	result, err := f.rounds.Advance(ctx, 2, AdvanceRequest{TargetRoundID: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, result.Enrolled)
	assert.Equal(t, []int64{4}, result.Skipped)
	assert.Equal(t, 2, result.Round.TotalCount)
	for _, entry := range result.Round.Students {
		assert.Equal(t, models.EnrollmentStatusPending, entry.Status)
	}

	_, err = f.rounds.Advance(ctx, 2, AdvanceRequest{TargetRoundID: 2})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = f.rounds.Advance(ctx, 2, AdvanceRequest{TargetRoundID: 77})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	enrollments, err := f.rounds.Enrollments(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, enrollments, 2)
}

func TestRoundServiceSetStatusIsManual(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	round, err := f.rounds.SetStatus(ctx, 2, RoundStatusRequest{Status: models.RoundStatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.RoundStatusInProgress, round.Status)
	assert.Equal(t, 4, round.TotalCount)

	_, err = f.rounds.SetStatus(ctx, 2, RoundStatusRequest{Status: "done"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = f.rounds.SetStatus(ctx, 9, RoundStatusRequest{Status: models.RoundStatusCompleted})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestRoundServiceSendResultsDoesNotMutate(t *testing.T) {
	f := newPipelineFixture(t, fixtureOptions{seed: true})
	ctx := context.Background()

	before, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)

	notification, err := f.rounds.SendResults(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TemplateRoundCompletion, notification.Kind)
	assert.Equal(t, "round:1", notification.Reference)
	assert.Contains(t, notification.Body, "📅 **Next Round:** Resume Screening on 2024-10-15 09:00")
	assert.Contains(t, notification.Body, "Shortlisted (4 of 5):")
	assert.Contains(t, notification.Body, "- Rahul Sharma <rahul.s@example.com>")
	assert.NotContains(t, notification.Body, "Amit Kumar")
	assert.Len(t, f.notifier.all(), 1)

	after, err := f.rounds.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.rounds.SendResults(ctx, 50)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
