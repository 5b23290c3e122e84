package evaluate

import (
	"context"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Searcher answers nearest-neighbor queries against a namespace.
type Searcher interface {
	Query(ctx context.Context, namespace, text string, k int) ([]domain.Chunk, error)
}
