package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
	"github.com/arclab-ai/researchpipe/internal/metrics"
	"github.com/arclab-ai/researchpipe/internal/pool"
)

// Service drives the three agent stages over one context:
// propose → validate → analyze-gaps. All stages share one Generator and
// one set of sampling parameters, fixed per run.
type Service struct {
	gen    Generator
	pool   *pool.Pool
	params domain.SamplingParams
	logger *zap.Logger
}

// New creates an agent orchestrator.
func New(gen Generator, p *pool.Pool, params domain.SamplingParams, logger *zap.Logger) *Service {
	return &Service{gen: gen, pool: p, params: params, logger: logger}
}

// Propose asks the proposer agent for hypotheses: one generation call,
// split by line, trimmed, empty lines dropped. No count is enforced here.
func (s *Service) Propose(ctx context.Context, contextText string) ([]string, error) {
	out, err := s.gen.Generate(ctx, proposerFor(contextText), s.params)
	if err != nil {
		return nil, fmt.Errorf("propose: %w", err)
	}

	var hypotheses []string
	for _, line := range strings.Split(out, "\n") {
		if h := strings.TrimSpace(line); h != "" {
			hypotheses = append(hypotheses, h)
		}
	}
	return hypotheses, nil
}

// Validate runs the validator agent once per hypothesis, fanned out on the
// shared pool. The result is index-aligned with hypotheses regardless of
// completion order. Any generation error aborts the whole stage.
func (s *Service) Validate(ctx context.Context, hypotheses []string, contextText string) ([]string, error) {
	validations := make([]string, len(hypotheses))
	err := s.pool.Each(len(hypotheses), func(i int) error {
		out, gerr := s.gen.Generate(ctx, validatorFor(hypotheses[i], contextText), s.params)
		if gerr != nil {
			return fmt.Errorf("validate hypothesis %d: %w", i, gerr)
		}
		validations[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return validations, nil
}

// AnalyzeGaps asks the gap agent for research gaps; the raw completion is
// returned unmodified.
func (s *Service) AnalyzeGaps(ctx context.Context, contextText string) (string, error) {
	out, err := s.gen.Generate(ctx, gapFor(contextText), s.params)
	if err != nil {
		return "", fmt.Errorf("analyze gaps: %w", err)
	}
	return out, nil
}

// Run executes all three stages in order. Any stage error aborts the run
// with no partial result.
func (s *Service) Run(ctx context.Context, contextText string) (domain.RunResult, error) {
	t0 := time.Now()
	hypotheses, err := s.Propose(ctx, contextText)
	if err != nil {
		return domain.RunResult{}, err
	}
	s.observeStage("propose", t0)
	s.logger.Info("proposed hypotheses",
		zap.Int("count", len(hypotheses)), zap.Duration("elapsed", time.Since(t0)))

	t1 := time.Now()
	validations, err := s.Validate(ctx, hypotheses, contextText)
	if err != nil {
		return domain.RunResult{}, err
	}
	s.observeStage("validate", t1)
	s.logger.Info("validations done", zap.Duration("elapsed", time.Since(t1)))

	t2 := time.Now()
	gaps, err := s.AnalyzeGaps(ctx, contextText)
	if err != nil {
		return domain.RunResult{}, err
	}
	s.observeStage("gaps", t2)
	s.logger.Info("gap analysis done", zap.Duration("elapsed", time.Since(t2)))

	return domain.RunResult{
		Hypotheses:  hypotheses,
		Validations: validations,
		Gaps:        gaps,
	}, nil
}

func (s *Service) observeStage(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
