// Package evaluate grounds generated text back into the indexed corpus by
// measuring embedding similarity to the nearest chunks.
package evaluate

import (
	"context"
	"fmt"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Service evaluates pipeline output against one index namespace. It is a
// pure reader: identical inputs against an unchanged index yield identical
// records.
type Service struct {
	search    Searcher
	namespace string
}

// New creates an evaluator bound to one index namespace.
func New(search Searcher, namespace string) *Service {
	return &Service{search: search, namespace: namespace}
}

// Hypotheses scores each hypothesis by the mean similarity of its top-k
// retrieved chunks; zero retrieved chunks mean 0.0, not an error. A
// hypothesis is supported when its average is at or above threshold.
// The result is keyed by hypothesis text: exact duplicates overwrite
// earlier entries.
func (s *Service) Hypotheses(
	ctx context.Context, hypotheses []string, k int, threshold float64,
) (map[string]domain.EvaluationRecord, error) {
	records := make(map[string]domain.EvaluationRecord, len(hypotheses))

	for i, hypo := range hypotheses {
		chunks, err := s.search.Query(ctx, s.namespace, hypo, k)
		if err != nil {
			return nil, fmt.Errorf("evaluate hypothesis %d: %w", i, err)
		}

		scores := make([]float64, 0, len(chunks))
		for _, c := range chunks {
			scores = append(scores, c.Score)
		}
		avg := mean(scores)

		records[hypo] = domain.EvaluationRecord{
			AvgSimilarity: avg,
			TopKScores:    scores,
			Supported:     avg >= threshold,
		}
	}
	return records, nil
}

// GapAnalysis returns the bare average similarity of the gap text to its
// top-k chunks. Lower means more novel relative to the indexed corpus; no
// threshold is applied at this layer.
func (s *Service) GapAnalysis(ctx context.Context, gapText string, k int) (float64, error) {
	chunks, err := s.search.Query(ctx, s.namespace, gapText, k)
	if err != nil {
		return 0, fmt.Errorf("evaluate gap analysis: %w", err)
	}

	scores := make([]float64, 0, len(chunks))
	for _, c := range chunks {
		scores = append(scores, c.Score)
	}
	return mean(scores), nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
