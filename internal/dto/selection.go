package dto

import "github.com/noah-isme/placement-api/internal/models"

// SelectionReport is the final roster filtered by a search term. Summary
// always covers the whole roster.
type SelectionReport struct {
	Students []models.SelectedStudent `json:"students"`
	Summary  models.SelectionSummary  `json:"summary"`
	Total    int                      `json:"total"`
	Matched  int                      `json:"matched"`
}
