package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores (text, vector) pairs per namespace and answers
// nearest-neighbor queries with scored chunks in relevance order.
type VectorIndex interface {
	Query(ctx context.Context, namespace, text string, k int) ([]Chunk, error)
	Insert(ctx context.Context, namespace string, docs []IndexedChunk) error
}

// Summarizer condenses a text chunk into a short summary within length
// bounds. deterministic disables sampling.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLen, minLen int, deterministic bool) (string, error)
}

// Generator produces a text completion for a prompt under the given
// sampling parameters.
type Generator interface {
	Generate(ctx context.Context, prompt string, p SamplingParams) (string, error)
}

// HealthChecker verifies model provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
