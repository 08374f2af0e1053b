package models

import "time"

// PostDateLayout is the DD/MM/YYYY layout used for job post dates.
const PostDateLayout = "02/01/2006"

// Job is a posting listed by the placement office.
type Job struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Company     string    `db:"company" json:"company"`
	Location    string    `db:"location" json:"location"`
	PostDate    string    `db:"post_date" json:"post_date"`
	Description string    `db:"description" json:"description"`
	Eligibility bool      `db:"eligibility" json:"eligibility"`
	Salary      string    `db:"salary" json:"salary"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// JobFilter narrows job listings.
type JobFilter struct {
	Search string
}

// Matches applies the registry search predicate: title, company or location.
func (j Job) Matches(term string) bool {
	return MatchesTerm(term, j.Title, j.Company, j.Location)
}
