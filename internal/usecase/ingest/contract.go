package ingest

import (
	"context"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Embedder vectorizes a batch of texts, index-aligned.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Inserter stores embedded chunks under a namespace.
type Inserter interface {
	Insert(ctx context.Context, namespace string, docs []domain.IndexedChunk) error
}
