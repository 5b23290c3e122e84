package agents

import (
	"context"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Generator produces one completion per prompt under fixed sampling parameters.
type Generator interface {
	Generate(ctx context.Context, prompt string, p domain.SamplingParams) (string, error)
}
