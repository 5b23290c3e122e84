// Package pipeline composes the end-to-end run: build a context from the
// index, then drive the agent stages over it.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
	"github.com/arclab-ai/researchpipe/internal/metrics"
)

// Service is one configured pipeline: a context builder and an agent
// orchestrator bound to the same namespace, with a fixed retrieval depth.
type Service struct {
	builder    ContextBuilder
	agents     Orchestrator
	retrievalK int
	logger     *zap.Logger
}

// New creates a pipeline with the given retrieval depth.
func New(builder ContextBuilder, agents Orchestrator, retrievalK int, logger *zap.Logger) *Service {
	return &Service{builder: builder, agents: agents, retrievalK: retrievalK, logger: logger}
}

// Run builds the context and executes propose → validate → analyze-gaps.
// An empty context is still a valid run; any stage error aborts it.
func (s *Service) Run(ctx context.Context) (domain.RunResult, error) {
	contextText, err := s.builder.Build(ctx, s.retrievalK)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return domain.RunResult{}, fmt.Errorf("build context: %w", err)
	}

	result, err := s.agents.Run(ctx, contextText)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		return domain.RunResult{}, err
	}

	metrics.PipelineRunsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("pipeline run complete",
		zap.Int("hypotheses", len(result.Hypotheses)),
		zap.Int("context_len", len(contextText)),
	)
	return result, nil
}
