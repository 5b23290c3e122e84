package experiment

import (
	"regexp"
	"strconv"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// markerRe matches a feasibility rating on a numbered first line, e.g.
// "1) Rate feasibility: 8" or "1) 8". Anchored per line so preamble text
// before the numbered list does not defeat it.
var markerRe = regexp.MustCompile(`(?m)^\s*1\)\s*(?:Rate feasibility[:\-\s]*)?\b([1-9]|10)\b`)

// fallbackRe grabs the first standalone integer in range anywhere in the
// text when no marker line is present.
var fallbackRe = regexp.MustCompile(`\b([1-9]|10)\b`)

// ParseFeasibilityScore extracts the 1..10 feasibility rating from one
// validation text. Marker-line matches win; otherwise the first in-range
// integer anywhere counts. Texts with neither yield an invalid score.
func ParseFeasibilityScore(validation string) domain.FeasibilityScore {
	m := markerRe.FindStringSubmatch(validation)
	if m == nil {
		m = fallbackRe.FindStringSubmatch(validation)
	}
	if m == nil {
		return domain.FeasibilityScore{}
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.FeasibilityScore{}
	}
	return domain.FeasibilityScore{Value: v, Valid: true}
}

// ParseFeasibilityScores maps each validation to its score, index-aligned.
func ParseFeasibilityScores(validations []string) []domain.FeasibilityScore {
	scores := make([]domain.FeasibilityScore, len(validations))
	for i, v := range validations {
		scores[i] = ParseFeasibilityScore(v)
	}
	return scores
}
