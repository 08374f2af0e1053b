package models

import "time"

// EnrollmentStatus is a student's outcome within one round.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusSelected EnrollmentStatus = "selected"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusPending:  {EnrollmentStatusSelected, EnrollmentStatusRejected},
	EnrollmentStatusSelected: {EnrollmentStatusPending},
	EnrollmentStatusRejected: {EnrollmentStatusPending},
}

// IsValid reports whether s is one of the three known statuses.
func (s EnrollmentStatus) IsValid() bool {
	_, ok := enrollmentTransitions[s]
	return ok
}

// CanTransitionTo reports whether the transition table allows moving from s to
// next. Staying in the same status is always allowed. A decision between
// selected and rejected has to go back through pending first.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Enrollment joins a student to a round with the student's status in it.
type Enrollment struct {
	ID        int64            `db:"id" json:"id"`
	RoundID   int64            `db:"round_id" json:"round_id"`
	StudentID int64            `db:"student_id" json:"student_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
