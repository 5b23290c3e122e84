package experiment

import (
	"math"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// SummarizeScores aggregates the valid scores of one experiment. Invalid
// entries are dropped first; if none remain the summary itself is invalid.
// Std is the sample standard deviation (n-1) and 0 for a single score.
func SummarizeScores(scores []domain.FeasibilityScore) domain.ScoreSummary {
	var vals []float64
	for _, s := range scores {
		if s.Valid {
			vals = append(vals, float64(s.Value))
		}
	}
	if len(vals) == 0 {
		return domain.ScoreSummary{}
	}

	min, max, sum := vals[0], vals[0], 0.0
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(vals))

	var std float64
	if len(vals) > 1 {
		var ss float64
		for _, v := range vals {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(len(vals)-1))
	}

	return domain.ScoreSummary{Min: min, Max: max, Mean: mean, Std: std, Valid: true}
}
