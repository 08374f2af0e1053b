package models

import "strings"

// MatchesTerm reports whether term is a case-insensitive substring of any
// field. Lowercasing is plain Unicode case mapping; accents are not folded.
// An empty or blank term matches everything.
func MatchesTerm(term string, fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
