package contextbuild

import (
	"context"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Searcher answers nearest-neighbor queries against a namespace.
type Searcher interface {
	Query(ctx context.Context, namespace, text string, k int) ([]domain.Chunk, error)
}

// Summarizer condenses one chunk within length bounds.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLen, minLen int, deterministic bool) (string, error)
}
