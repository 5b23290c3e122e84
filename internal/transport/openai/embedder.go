package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
	"github.com/arclab-ai/researchpipe/internal/metrics"
)

const roleEmbedding = "embedding"

// Embedder is a batch embedding binding.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

var _ domain.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedding binding for the given model.
func NewEmbedder(cfg Config, model string, dimensions int, logger *zap.Logger) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
		logger:     logger,
	}
}

// Embed vectorizes a batch of texts in one API call. The returned slice is
// index-aligned with the input.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(roleEmbedding, string(e.model), "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(roleEmbedding, string(e.model), "api_error").Inc()
		return nil, parseAPIError(roleEmbedding, err)
	}

	if len(resp.Data) != len(texts) {
		metrics.ModelRequestsTotal.WithLabelValues(roleEmbedding, string(e.model), "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(roleEmbedding, string(e.model), "short_response").Inc()
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(resp.Data), domain.ErrModelProviderError)
	}

	metrics.ModelRequestsTotal.WithLabelValues(roleEmbedding, string(e.model), "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(roleEmbedding, string(e.model)).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ModelTokensTotal.WithLabelValues(roleEmbedding, string(e.model), "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.ModelTokensTotal.WithLabelValues(roleEmbedding, string(e.model), "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	// Order by the response index, not slice position.
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range: %w",
				d.Index, domain.ErrModelProviderError)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
