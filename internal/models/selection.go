package models

import (
	"regexp"
	"strconv"
	"strings"
)

// SelectedStudent is one row of the final roster: a selected enrollment in the
// terminal round joined with the student's master record.
type SelectedStudent struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	CGPA       float64 `json:"cgpa"`
	Package    string  `json:"package"`
	Position   string  `json:"position"`
}

// Matches searches name, email, department and position.
func (s SelectedStudent) Matches(term string) bool {
	return MatchesTerm(term, s.Name, s.Email, s.Department, s.Position)
}

// SelectionSummary aggregates a roster. Averages and maxima are in LPA and are
// zero for an empty roster.
type SelectionSummary struct {
	Count          int     `json:"count"`
	AveragePackage float64 `json:"average_package"`
	MaxPackage     float64 `json:"max_package"`
}

// ReportFormat enumerates export formats for the selection report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

var packagePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([A-Za-z]*)\s*$`)

// packageUnits maps a lower-cased unit suffix to its factor in LPA. A bare
// number is read as LPA.
var packageUnits = map[string]float64{
	"":      1,
	"lpa":   1,
	"cr":    100,
	"crore": 100,
}

// ParsePackage normalises a package string such as "12 LPA", "13.5LPA" or
// "1.2 Cr" to LPA. Unknown units do not parse.
func ParsePackage(raw string) (float64, bool) {
	match := packagePattern.FindStringSubmatch(strings.ReplaceAll(raw, ",", ""))
	if match == nil {
		return 0, false
	}
	factor, ok := packageUnits[strings.ToLower(match[2])]
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value * factor, true
}

// Summarize computes count, average and max package. Rows whose package does
// not parse count toward Count but not the arithmetic.
func Summarize(roster []SelectedStudent) SelectionSummary {
	summary := SelectionSummary{Count: len(roster)}
	var total float64
	parsed := 0
	for _, s := range roster {
		value, ok := ParsePackage(s.Package)
		if !ok {
			continue
		}
		total += value
		parsed++
		if value > summary.MaxPackage {
			summary.MaxPackage = value
		}
	}
	if parsed > 0 {
		summary.AveragePackage = total / float64(parsed)
	}
	return summary
}
