package dto

import "github.com/noah-isme/placement-api/internal/models"

// RoundSummary is a round snapshot with its roster aggregates.
type RoundSummary struct {
	models.Round
	SelectedCount int  `json:"selected_count"`
	TotalCount    int  `json:"total_count"`
	IsEmpty       bool `json:"is_empty"`
}

// NewRoundSummary copies round and computes its aggregates.
func NewRoundSummary(round models.Round) RoundSummary {
	return RoundSummary{
		Round:         round.Clone(),
		SelectedCount: round.SelectedCount(),
		TotalCount:    round.TotalCount(),
		IsEmpty:       round.IsEmpty(),
	}
}

// AdvanceResult reports which selected students moved to the target round.
type AdvanceResult struct {
	Round    RoundSummary `json:"round"`
	Enrolled []int64      `json:"enrolled"`
	Skipped  []int64      `json:"skipped"`
}
