// Package ingest loads source documents into an index namespace:
// read → chunk → embed in batches → insert.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/arclab-ai/researchpipe/internal/chunker"
	"github.com/arclab-ai/researchpipe/internal/domain"
)

// DefaultBatchSize is the embedding batch size.
const DefaultBatchSize = 32

// Service ingests plain-text sources into a vector index namespace.
type Service struct {
	embed     Embedder
	index     Inserter
	split     *chunker.Splitter
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion service.
func New(embed Embedder, index Inserter, split *chunker.Splitter, logger *zap.Logger) *Service {
	return &Service{
		embed:     embed,
		index:     index,
		split:     split,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// WithBatchSize overrides the embedding batch size.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// Sources reads the given paths (globs allowed, .txt only), chunks their
// content, embeds the chunks in batches, and inserts them into namespace.
// Returns the number of chunks indexed. Any failure is fatal for the run.
func (s *Service) Sources(ctx context.Context, namespace string, paths []string) (int, error) {
	texts, err := s.collect(paths)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		return 0, fmt.Errorf("no .txt sources in %v: %w", paths, domain.ErrNoDocuments)
	}

	var chunks []string
	for _, t := range texts {
		chunks = append(chunks, s.split.Split(t)...)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("sources contain no text: %w", domain.ErrNoDocuments)
	}

	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := s.embed.Embed(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("embedder returned %d vectors for %d texts: %w",
				len(vectors), len(batch), domain.ErrModelProviderError)
		}

		docs := make([]domain.IndexedChunk, len(batch))
		for i := range batch {
			docs[i] = domain.IndexedChunk{Text: batch[i], Vector: vectors[i]}
		}
		if err := s.index.Insert(ctx, namespace, docs); err != nil {
			return 0, fmt.Errorf("insert batch at %d: %w", start, err)
		}
	}

	s.logger.Info("ingested sources",
		zap.String("namespace", namespace),
		zap.Int("documents", len(texts)),
		zap.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// collect expands globs and reads .txt files in input order.
func (s *Service) collect(paths []string) ([]string, error) {
	var texts []string
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			if strings.ContainsAny(p, "*?[") {
				// A pattern that matched nothing contributes no sources.
				continue
			}
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(filepath.Clean(m))
			if err != nil {
				return nil, fmt.Errorf("read source %s: %w", m, err)
			}
			texts = append(texts, string(data))
		}
	}
	return texts, nil
}
