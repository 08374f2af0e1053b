package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentTransitions(t *testing.T) {
	cases := []struct {
		from, to EnrollmentStatus
		allowed  bool
	}{
		{EnrollmentStatusPending, EnrollmentStatusSelected, true},
		{EnrollmentStatusPending, EnrollmentStatusRejected, true},
		{EnrollmentStatusSelected, EnrollmentStatusPending, true},
		{EnrollmentStatusRejected, EnrollmentStatusPending, true},
		{EnrollmentStatusSelected, EnrollmentStatusSelected, true},
		{EnrollmentStatusSelected, EnrollmentStatusRejected, false},
		{EnrollmentStatusRejected, EnrollmentStatusSelected, false},
		{EnrollmentStatusPending, EnrollmentStatus("waitlisted"), false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.False(t, EnrollmentStatus("").IsValid())
}

func TestMatchesTerm(t *testing.T) {
	assert.True(t, MatchesTerm("", "anything"))
	assert.True(t, MatchesTerm("   ", "anything"))
	assert.True(t, MatchesTerm("mumbai", "x", "MUMBAI, INDIA"))
	assert.False(t, MatchesTerm("pune", "MUMBAI, INDIA"))
	assert.False(t, MatchesTerm("e", "É"), "accents are not folded")
}

func TestParsePackage(t *testing.T) {
	cases := map[string]float64{
		"12 LPA": 12, "13.5 LPA": 13.5, "9LPA": 9, "9 lpa": 9, " 15 ": 15, "1,200 LPA": 1200,
		"1.2 Cr": 120, "2cr": 200, "1 Crore": 100,
	}
	for raw, want := range cases {
		got, ok := ParsePackage(raw)
		assert.True(t, ok, raw)
		assert.InDelta(t, want, got, 1e-9, raw)
	}
	for _, raw := range []string{"", "LPA", "twelve", "12 LPA extra", "15 USD", "80 k"} {
		_, ok := ParsePackage(raw)
		assert.False(t, ok, raw)
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]SelectedStudent{{Package: "12 LPA"}, {Package: "15 LPA"}, {Package: "n/a"}})
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 13.5, summary.AveragePackage, 1e-9)
	assert.Equal(t, 15.0, summary.MaxPackage)

	mixed := Summarize([]SelectedStudent{{Package: "12 LPA"}, {Package: "1.2 Cr"}, {Package: "15 USD"}})
	assert.Equal(t, 3, mixed.Count)
	assert.InDelta(t, 66, mixed.AveragePackage, 1e-9)
	assert.InDelta(t, 120, mixed.MaxPackage, 1e-9)

	empty := Summarize(nil)
	assert.Equal(t, SelectionSummary{}, empty)
}

func TestRoundCounts(t *testing.T) {
	round := Round{Students: []StudentEntry{
		{ID: 1, Status: EnrollmentStatusSelected},
		{ID: 2, Status: EnrollmentStatusRejected},
		{ID: 3, Status: EnrollmentStatusSelected},
	}}
	assert.Equal(t, 2, round.SelectedCount())
	assert.Equal(t, 3, round.TotalCount())
	assert.False(t, round.IsEmpty())
	assert.True(t, Round{}.IsEmpty())

	clone := round.Clone()
	clone.Students[0].Status = EnrollmentStatusPending
	assert.Equal(t, EnrollmentStatusSelected, round.Students[0].Status)
}
