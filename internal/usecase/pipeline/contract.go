package pipeline

import (
	"context"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// ContextBuilder assembles the generation context from the index.
type ContextBuilder interface {
	Build(ctx context.Context, k int) (string, error)
}

// Orchestrator runs the agent stages over a prepared context.
type Orchestrator interface {
	Run(ctx context.Context, contextText string) (domain.RunResult, error)
}
