package repository

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/placement-api/internal/models"
)

// sequence hands out ids that are never reused, independent of collection size.
type sequence struct {
	last int64
}

func (s *sequence) next() int64 {
	s.last++
	return s.last
}

// MemoryStore holds every pipeline collection behind one lock. It is the single
// writer for the process; readers always receive copies.
type MemoryStore struct {
	mu          sync.RWMutex
	jobs        []models.Job
	rounds      []models.Round
	students    []models.Student
	enrollments []models.Enrollment

	jobSeq        sequence
	roundSeq      sequence
	studentSeq    sequence
	enrollmentSeq sequence

	now func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

// Jobs exposes the job collection.
func (s *MemoryStore) Jobs() *MemoryJobRepository { return &MemoryJobRepository{store: s} }

// Rounds exposes the round collection with rosters joined in.
func (s *MemoryStore) Rounds() *MemoryRoundRepository { return &MemoryRoundRepository{store: s} }

// Students exposes the student master records.
func (s *MemoryStore) Students() *MemoryStudentRepository { return &MemoryStudentRepository{store: s} }

// Enrollments exposes round participation records.
func (s *MemoryStore) Enrollments() *MemoryEnrollmentRepository {
	return &MemoryEnrollmentRepository{store: s}
}

// MemoryJobRepository stores jobs in creation order.
type MemoryJobRepository struct {
	store *MemoryStore
}

// List returns jobs newest first.
func (r *MemoryJobRepository) List(_ context.Context) ([]models.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Job, 0, len(r.store.jobs))
	for i := len(r.store.jobs) - 1; i >= 0; i-- {
		out = append(out, r.store.jobs[i])
	}
	return out, nil
}

// FindByID fetches one job.
func (r *MemoryJobRepository) FindByID(_ context.Context, id int64) (*models.Job, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, job := range r.store.jobs {
		if job.ID == id {
			found := job
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns the next id and stores the job.
func (r *MemoryJobRepository) Create(_ context.Context, job *models.Job) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	job.ID = r.store.jobSeq.next()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = r.store.now()
	}
	r.store.jobs = append(r.store.jobs, *job)
	return nil
}

// MemoryStudentRepository stores student master records.
type MemoryStudentRepository struct {
	store *MemoryStore
}

// List returns students in id order.
func (r *MemoryStudentRepository) List(_ context.Context) ([]models.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Student, len(r.store.students))
	copy(out, r.store.students)
	return out, nil
}

// FindByID fetches one student.
func (r *MemoryStudentRepository) FindByID(_ context.Context, id int64) (*models.Student, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	student, ok := r.store.studentLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &student, nil
}

// Create assigns the next id and stores the student.
func (r *MemoryStudentRepository) Create(_ context.Context, student *models.Student) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	student.ID = r.store.studentSeq.next()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = r.store.now()
	}
	r.store.students = append(r.store.students, *student)
	return nil
}

func (s *MemoryStore) studentLocked(id int64) (models.Student, bool) {
	for _, student := range s.students {
		if student.ID == id {
			return student, true
		}
	}
	return models.Student{}, false
}

// MemoryRoundRepository stores rounds in insertion order.
type MemoryRoundRepository struct {
	store *MemoryStore
}

// List returns every round with its roster, in insertion order.
func (r *MemoryRoundRepository) List(_ context.Context) ([]models.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Round, 0, len(r.store.rounds))
	for _, round := range r.store.rounds {
		out = append(out, r.store.withRosterLocked(round))
	}
	return out, nil
}

// FindByID fetches one round with its roster.
func (r *MemoryRoundRepository) FindByID(_ context.Context, id int64) (*models.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	idx := r.store.roundIndexLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	round := r.store.withRosterLocked(r.store.rounds[idx])
	return &round, nil
}

// Create assigns the next id and appends the round. Any roster on the argument
// is ignored; participation lives in enrollments.
func (r *MemoryRoundRepository) Create(_ context.Context, round *models.Round) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := r.store.now()
	round.ID = r.store.roundSeq.next()
	round.CreatedAt = now
	round.UpdatedAt = now
	round.Students = []models.StudentEntry{}
	stored := *round
	stored.Students = nil
	r.store.rounds = append(r.store.rounds, stored)
	return nil
}

// Update applies the non-nil patch fields under the store lock. Status and
// roster are untouched.
func (r *MemoryRoundRepository) Update(_ context.Context, id int64, patch models.RoundPatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	idx := r.store.roundIndexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	stored := &r.store.rounds[idx]
	patch.Apply(stored)
	stored.UpdatedAt = r.store.now()
	return nil
}

// UpdateStatus sets the advisory round status.
func (r *MemoryRoundRepository) UpdateStatus(_ context.Context, id int64, status models.RoundStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	idx := r.store.roundIndexLocked(id)
	if idx < 0 {
		return ErrNotFound
	}
	r.store.rounds[idx].Status = status
	r.store.rounds[idx].UpdatedAt = r.store.now()
	return nil
}

func (s *MemoryStore) roundIndexLocked(id int64) int {
	for i, round := range s.rounds {
		if round.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) withRosterLocked(round models.Round) models.Round {
	roster := make([]models.StudentEntry, 0)
	for _, e := range s.enrollments {
		if e.RoundID != round.ID {
			continue
		}
		student, _ := s.studentLocked(e.StudentID)
		roster = append(roster, models.StudentEntry{
			ID:     e.StudentID,
			Name:   student.Name,
			Email:  student.Email,
			Status: e.Status,
		})
	}
	round.Students = roster
	return round
}

// MemoryEnrollmentRepository stores round participation in enrollment order.
type MemoryEnrollmentRepository struct {
	store *MemoryStore
}

// Find returns the enrollment of a student in a round.
func (r *MemoryEnrollmentRepository) Find(_ context.Context, roundID, studentID int64) (*models.Enrollment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	idx := r.store.enrollmentIndexLocked(roundID, studentID)
	if idx < 0 {
		return nil, ErrNotFound
	}
	found := r.store.enrollments[idx]
	return &found, nil
}

// ListByRound returns a round's enrollments in enrollment order.
func (r *MemoryEnrollmentRepository) ListByRound(_ context.Context, roundID int64) ([]models.Enrollment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Enrollment, 0)
	for _, e := range r.store.enrollments {
		if e.RoundID == roundID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Create stores a new enrollment. Both the round and the student must exist and
// a student can be enrolled in a round only once.
func (r *MemoryEnrollmentRepository) Create(_ context.Context, enrollment *models.Enrollment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.roundIndexLocked(enrollment.RoundID) < 0 {
		return ErrNotFound
	}
	if _, ok := r.store.studentLocked(enrollment.StudentID); !ok {
		return ErrNotFound
	}
	if r.store.enrollmentIndexLocked(enrollment.RoundID, enrollment.StudentID) >= 0 {
		return ErrDuplicate
	}
	now := r.store.now()
	enrollment.ID = r.store.enrollmentSeq.next()
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now
	r.store.enrollments = append(r.store.enrollments, *enrollment)
	return nil
}

// UpdateStatus moves one enrollment from one status to another. A stored
// status other than from yields ErrStale.
func (r *MemoryEnrollmentRepository) UpdateStatus(_ context.Context, roundID, studentID int64, from, to models.EnrollmentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	idx := r.store.enrollmentIndexLocked(roundID, studentID)
	if idx < 0 {
		return ErrNotFound
	}
	if r.store.enrollments[idx].Status != from {
		return ErrStale
	}
	r.store.enrollments[idx].Status = to
	r.store.enrollments[idx].UpdatedAt = r.store.now()
	return nil
}

func (s *MemoryStore) enrollmentIndexLocked(roundID, studentID int64) int {
	for i, e := range s.enrollments {
		if e.RoundID == roundID && e.StudentID == studentID {
			return i
		}
	}
	return -1
}
