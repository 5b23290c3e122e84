package openai

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/domain"
	"github.com/arclab-ai/researchpipe/internal/metrics"
)

const roleSummarization = "summarization"

// Summarizer condenses chunks via chat completion.
type Summarizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

var _ domain.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a summarization binding for the given model.
func NewSummarizer(cfg Config, model string, logger *zap.Logger) *Summarizer {
	return &Summarizer{client: newClient(cfg), model: model, logger: logger}
}

// Summarize returns a summary of text within [minLen, maxLen] tokens.
// deterministic disables sampling.
func (s *Summarizer) Summarize(
	ctx context.Context, text string, maxLen, minLen int, deterministic bool,
) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"Summarize the user's text in %d to %d words. Reply with the summary only.",
					minLen, maxLen,
				),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens: maxLen,
	}
	if deterministic {
		// Temperature 0 is dropped by the omitempty tag; the smallest
		// non-zero value is the accepted way to request greedy decoding.
		req.Temperature = math.SmallestNonzeroFloat32
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(roleSummarization, s.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(roleSummarization, s.model, "api_error").Inc()
		return "", parseAPIError(roleSummarization, err)
	}
	if len(resp.Choices) == 0 {
		metrics.ModelRequestsTotal.WithLabelValues(roleSummarization, s.model, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(roleSummarization, s.model, "empty_response").Inc()
		return "", fmt.Errorf("summarization: %w", domain.ErrEmptyCompletion)
	}

	metrics.ModelRequestsTotal.WithLabelValues(roleSummarization, s.model, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(roleSummarization, s.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ModelTokensTotal.WithLabelValues(roleSummarization, s.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
