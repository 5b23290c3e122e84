// Package experiment runs parameterized pipeline executions and turns
// validator text into numeric feasibility statistics.
package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/config"
	"github.com/arclab-ai/researchpipe/internal/domain"
)

// DefaultMaxHypotheses caps how many hypotheses one experiment keeps.
const DefaultMaxHypotheses = 2

// Runner executes experiments through a pipeline factory.
type Runner struct {
	factory       Factory
	maxHypotheses int
	logger        *zap.Logger
}

// NewRunner creates an experiment runner.
func NewRunner(factory Factory, maxHypotheses int, logger *zap.Logger) *Runner {
	if maxHypotheses <= 0 {
		maxHypotheses = DefaultMaxHypotheses
	}
	return &Runner{factory: factory, maxHypotheses: maxHypotheses, logger: logger}
}

// Run executes one experiment in its own index namespace. Runtime covers
// the pipeline execution only, not namespace setup or ingestion.
// Hypotheses and validations are truncated index-aligned to the configured
// maximum before score parsing.
func (r *Runner) Run(ctx context.Context, exp config.Experiment) (domain.ExperimentResult, error) {
	namespace := "exp_" + exp.Name

	p, err := r.factory.New(ctx, namespace, exp.Sources, exp.K)
	if err != nil {
		return domain.ExperimentResult{}, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	start := time.Now()
	result, err := p.Run(ctx)
	runtime := time.Since(start)
	if err != nil {
		return domain.ExperimentResult{}, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	hypotheses := result.Hypotheses
	if len(hypotheses) > r.maxHypotheses {
		hypotheses = hypotheses[:r.maxHypotheses]
	}
	validations := result.Validations
	if len(validations) > len(hypotheses) {
		validations = validations[:len(hypotheses)]
	}

	r.logger.Info("experiment complete",
		zap.String("name", exp.Name),
		zap.Duration("runtime", runtime),
		zap.Int("hypotheses", len(hypotheses)),
	)

	return domain.ExperimentResult{
		Name:        exp.Name,
		Runtime:     runtime,
		Hypotheses:  hypotheses,
		Validations: validations,
		Scores:      ParseFeasibilityScores(validations),
		Gaps:        result.Gaps,
	}, nil
}

// Sweep runs the experiments in input order. The first failure aborts the
// sweep; completed results up to that point are returned alongside the
// error.
func (r *Runner) Sweep(ctx context.Context, experiments []config.Experiment) ([]domain.ExperimentResult, error) {
	results := make([]domain.ExperimentResult, 0, len(experiments))
	for _, exp := range experiments {
		res, err := r.Run(ctx, exp)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
