package experiment

import (
	"context"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Pipeline is one runnable context-build plus agent chain.
type Pipeline interface {
	Run(ctx context.Context) (domain.RunResult, error)
}

// Factory builds a pipeline bound to a fresh index namespace with the
// given sources ingested and retrieval depth k. Namespace isolation keeps
// experiments from sharing mutable index state.
type Factory interface {
	New(ctx context.Context, namespace string, sources []string, k int) (Pipeline, error)
}
