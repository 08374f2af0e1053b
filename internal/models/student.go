package models

import "time"

// Student is the master record for a candidate, shared by every round they
// are enrolled in.
type Student struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Department string    `db:"department" json:"department"`
	CGPA       float64   `db:"cgpa" json:"cgpa"`
	Package    string    `db:"package" json:"package"`
	Position   string    `db:"position" json:"position"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search string
}

// Matches searches name, email, department and position.
func (s Student) Matches(term string) bool {
	return MatchesTerm(term, s.Name, s.Email, s.Department, s.Position)
}
