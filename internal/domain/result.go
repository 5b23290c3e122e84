package domain

import "time"

// RunResult is the output of one full pipeline run.
// Validations[i] corresponds to Hypotheses[i].
type RunResult struct {
	Hypotheses  []string
	Validations []string
	Gaps        string
}

// EvaluationRecord grounds one hypothesis against the indexed corpus.
// TopKScores keeps the index's result order.
type EvaluationRecord struct {
	AvgSimilarity float64
	TopKScores    []float64
	Supported     bool
}

// FeasibilityScore is a 1-10 rating parsed from validator output.
// Valid is false when no rating could be extracted.
type FeasibilityScore struct {
	Value int
	Valid bool
}

// ExperimentResult is the outcome of one named experiment run.
// Hypotheses and validations are sliced to the configured maximum,
// index-aligned; Scores[i] belongs to Validations[i].
type ExperimentResult struct {
	Name        string
	Runtime     time.Duration
	Hypotheses  []string
	Validations []string
	Scores      []FeasibilityScore
	Gaps        string
}

// ScoreSummary aggregates the valid feasibility scores of one experiment.
// Valid is false when there were no valid scores; Min/Max/Mean/Std are
// meaningless in that case.
type ScoreSummary struct {
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
	Valid bool
}
