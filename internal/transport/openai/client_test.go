package openai

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

func TestParseAPIError(t *testing.T) {
	t.Run("request error wraps provider sentinel", func(t *testing.T) {
		err := parseAPIError("embedding", &openai.RequestError{
			HTTPStatusCode: http.StatusBadGateway,
			Body:           []byte(`{"detail": "upstream unavailable"}`),
			Err:            errors.New("bad gateway"),
		})
		if !errors.Is(err, domain.ErrModelProviderError) {
			t.Errorf("expected ErrModelProviderError, got %v", err)
		}
		if !strings.Contains(err.Error(), "upstream unavailable") {
			t.Errorf("detail not extracted: %v", err)
		}
	})

	t.Run("429 maps to rate limited", func(t *testing.T) {
		err := parseAPIError("generation", &openai.RequestError{
			HTTPStatusCode: http.StatusTooManyRequests,
			Err:            errors.New("too many requests"),
		})
		if !errors.Is(err, domain.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("api error carries message", func(t *testing.T) {
		err := parseAPIError("summarization", &openai.APIError{
			HTTPStatusCode: http.StatusBadRequest,
			Message:        "model not found",
		})
		if !errors.Is(err, domain.ErrModelProviderError) {
			t.Errorf("expected ErrModelProviderError, got %v", err)
		}
		if !strings.Contains(err.Error(), "model not found") {
			t.Errorf("message lost: %v", err)
		}
	})

	t.Run("plain error still wrapped", func(t *testing.T) {
		err := parseAPIError("embedding", errors.New("dial tcp: connection refused"))
		if !errors.Is(err, domain.ErrModelProviderError) {
			t.Errorf("expected ErrModelProviderError, got %v", err)
		}
	})
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail": "quota exceeded"}`)); got != "quota exceeded" {
		t.Errorf("detail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("expected empty detail for invalid body, got %q", got)
	}
}
