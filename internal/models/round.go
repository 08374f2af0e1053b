package models

import "time"

// RoundMode is how a round is conducted.
type RoundMode string

const (
	RoundModeOnline  RoundMode = "Online"
	RoundModeOffline RoundMode = "Offline"
)

// IsValid reports whether m is a known mode.
func (m RoundMode) IsValid() bool {
	return m == RoundModeOnline || m == RoundModeOffline
}

// RoundStatus is an advisory label set by the placement office. It is never
// recomputed from dates or student outcomes.
type RoundStatus string

const (
	RoundStatusUpcoming   RoundStatus = "upcoming"
	RoundStatusInProgress RoundStatus = "in-progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

// IsValid reports whether s is a known round status.
func (s RoundStatus) IsValid() bool {
	switch s {
	case RoundStatusUpcoming, RoundStatusInProgress, RoundStatusCompleted:
		return true
	default:
		return false
	}
}

// StudentEntry is the view of one enrollment inside a round.
type StudentEntry struct {
	ID     int64            `db:"student_id" json:"id"`
	Name   string           `db:"name" json:"name"`
	Email  string           `db:"email" json:"email"`
	Status EnrollmentStatus `db:"status" json:"status"`
}

// Round is one stage of the hiring process with its roster in enrollment order.
type Round struct {
	ID        int64          `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Date      string         `db:"date" json:"date"`
	Time      string         `db:"time" json:"time"`
	Mode      RoundMode      `db:"mode" json:"mode"`
	Status    RoundStatus    `db:"status" json:"status"`
	Students  []StudentEntry `db:"-" json:"students"`
	CreatedAt time.Time      `db:"created_at" json:"-"`
	UpdatedAt time.Time      `db:"updated_at" json:"-"`
}

// RoundPatch carries a partial round edit. Nil fields keep their stored value.
type RoundPatch struct {
	Name *string
	Date *string
	Time *string
	Mode *RoundMode
}

// Apply copies the non-nil fields onto r.
func (p RoundPatch) Apply(r *Round) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Mode != nil {
		r.Mode = *p.Mode
	}
}

// SelectedCount is the number of entries marked selected.
func (r Round) SelectedCount() int {
	count := 0
	for _, s := range r.Students {
		if s.Status == EnrollmentStatusSelected {
			count++
		}
	}
	return count
}

// TotalCount is the roster size.
func (r Round) TotalCount() int {
	return len(r.Students)
}

// IsEmpty reports whether nobody is enrolled.
func (r Round) IsEmpty() bool {
	return len(r.Students) == 0
}

// Entry returns the roster entry for a student.
func (r Round) Entry(studentID int64) (StudentEntry, bool) {
	for _, s := range r.Students {
		if s.ID == studentID {
			return s, true
		}
	}
	return StudentEntry{}, false
}

// Clone returns a copy that shares no roster storage with r.
func (r Round) Clone() Round {
	out := r
	out.Students = make([]StudentEntry, len(r.Students))
	copy(out.Students, r.Students)
	return out
}
