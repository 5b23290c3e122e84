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

const roleGeneration = "generation"

// Generator produces agent completions via chat completion.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ domain.Generator = (*Generator)(nil)

// NewGenerator creates a generation binding for the given model.
func NewGenerator(cfg Config, model string, logger *zap.Logger) *Generator {
	return &Generator{client: newClient(cfg), model: model, logger: logger}
}

// Generate runs one completion for prompt under the given sampling parameters.
func (g *Generator) Generate(ctx context.Context, prompt string, p domain.SamplingParams) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: p.Temperature,
		TopP:        p.TopP,
		MaxTokens:   p.MaxNewTokens,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(roleGeneration, g.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(roleGeneration, g.model, "api_error").Inc()
		return "", parseAPIError(roleGeneration, err)
	}
	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues(roleGeneration, g.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(roleGeneration, g.model, "empty_response").Inc()
		return "", fmt.Errorf("generation: %w", domain.ErrEmptyCompletion)
	}

	metrics.ModelRequestsTotal.WithLabelValues(roleGeneration, g.model, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(roleGeneration, g.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ModelTokensTotal.WithLabelValues(roleGeneration, g.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.ModelTokensTotal.WithLabelValues(roleGeneration, g.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}
