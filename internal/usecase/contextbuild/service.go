package contextbuild

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/metrics"
	"github.com/arclab-ai/researchpipe/internal/pool"
)

// Summary length bounds handed to the summarizer on every chunk.
const (
	DefaultMaxSummaryLen = 150
	DefaultMinSummaryLen = 30
)

// Service builds the generation context: one representative top-k retrieval
// followed by concurrent per-chunk summarization on the shared pool.
type Service struct {
	search    Searcher
	summ      Summarizer
	pool      *pool.Pool
	namespace string
	maxLen    int
	minLen    int
	logger    *zap.Logger
}

// New creates a context builder bound to one index namespace.
func New(search Searcher, summ Summarizer, p *pool.Pool, namespace string, logger *zap.Logger) *Service {
	return &Service{
		search:    search,
		summ:      summ,
		pool:      p,
		namespace: namespace,
		maxLen:    DefaultMaxSummaryLen,
		minLen:    DefaultMinSummaryLen,
		logger:    logger,
	}
}

// WithSummaryBounds overrides the summary length bounds.
func (s *Service) WithSummaryBounds(maxLen, minLen int) *Service {
	if maxLen > 0 {
		s.maxLen = maxLen
	}
	if minLen > 0 {
		s.minLen = minLen
	}
	return s
}

// Build retrieves the top-k chunks and joins their summaries with blank
// lines, preserving retrieval order. The query is deliberately empty: the
// context is built from representative chunks, not from a specific
// question. Zero retrieved chunks yield an empty context, not an error.
func (s *Service) Build(ctx context.Context, k int) (string, error) {
	if k < 1 {
		return "", fmt.Errorf("k must be >= 1, got %d", k)
	}

	start := time.Now()

	chunks, err := s.search.Query(ctx, s.namespace, "", k)
	if err != nil {
		return "", fmt.Errorf("retrieve chunks: %w", err)
	}
	if len(chunks) == 0 {
		s.logger.Warn("no chunks retrieved for context", zap.String("namespace", s.namespace))
		return "", nil
	}

	summaries := make([]string, len(chunks))
	err = s.pool.Each(len(chunks), func(i int) error {
		summary, serr := s.summ.Summarize(ctx, chunks[i].Text, s.maxLen, s.minLen, true)
		if serr != nil {
			return fmt.Errorf("summarize chunk %d: %w", i, serr)
		}
		summaries[i] = summary
		return nil
	})
	if err != nil {
		return "", err
	}

	elapsed := time.Since(start)
	metrics.PipelineStageDuration.WithLabelValues("context").Observe(elapsed.Seconds())
	s.logger.Info("retrieved and summarized context",
		zap.String("namespace", s.namespace),
		zap.Int("chunks", len(chunks)),
		zap.Duration("elapsed", elapsed),
	)

	return strings.Join(summaries, "\n\n"), nil
}
