// Package memory provides an in-process vector index using brute-force
// cosine similarity. Intended for local runs and tests; namespaces map to
// independent buckets.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Index is an in-memory vector index. Queries embed the query text via the
// injected embedder and rank stored chunks by cosine similarity.
type Index struct {
	embed domain.Embedder

	mu      sync.RWMutex
	buckets map[string]*bucket
}

type bucket struct {
	texts   []string
	vectors [][]float32
}

// New creates an empty in-memory index.
func New(embed domain.Embedder) *Index {
	return &Index{embed: embed, buckets: make(map[string]*bucket)}
}

// Insert appends chunks to the namespace bucket, creating it on first use.
func (x *Index) Insert(_ context.Context, namespace string, docs []domain.IndexedChunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	b, ok := x.buckets[namespace]
	if !ok {
		b = &bucket{}
		x.buckets[namespace] = b
	}

	dim := 0
	if len(b.vectors) > 0 {
		dim = len(b.vectors[0])
	}
	for _, d := range docs {
		if dim > 0 && len(d.Vector) != dim {
			return fmt.Errorf("namespace %q expects dimension %d, got %d: %w",
				namespace, dim, len(d.Vector), domain.ErrVectorDimMismatch)
		}
		if dim == 0 {
			dim = len(d.Vector)
		}
		b.texts = append(b.texts, d.Text)
		b.vectors = append(b.vectors, d.Vector)
	}
	return nil
}

// Query embeds text and returns the top-k chunks by cosine similarity,
// highest first. An unknown or empty namespace yields no chunks.
func (x *Index) Query(ctx context.Context, namespace, text string, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	vecs, err := x.embed.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector: %w", domain.ErrEmptyCompletion)
	}
	query := vecs[0]

	x.mu.RLock()
	defer x.mu.RUnlock()

	b, ok := x.buckets[namespace]
	if !ok || len(b.texts) == 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(b.vectors))
	for i, v := range b.vectors {
		ranked[i] = scored{idx: i, score: cosine(query, v)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]domain.Chunk, 0, k)
	for _, r := range ranked[:k] {
		out = append(out, domain.Chunk{Text: b.texts[r.idx], Score: r.score})
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
