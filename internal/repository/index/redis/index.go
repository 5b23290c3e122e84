// Package redis provides a vector index backed by Redis 8+ FT.SEARCH.
// Each namespace gets its own FT index and key prefix, so experiments
// never share mutable index state.
package redis

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/arclab-ai/researchpipe/internal/domain"
)

// Config holds connection parameters for the Redis index.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Index implements domain.VectorIndex via rueidis.
type Index struct {
	client rueidis.Client
	embed  domain.Embedder
	prefix string
}

var _ domain.VectorIndex = (*Index)(nil)

// New creates a Redis-backed vector index.
func New(cfg Config, embed domain.Embedder) (*Index, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "researchpipe:"
	}

	return &Index{client: client, embed: embed, prefix: prefix}, nil
}

// Close shuts down the client.
func (x *Index) Close() {
	x.client.Close()
}

// Ping checks connectivity.
func (x *Index) Ping(ctx context.Context) error {
	cmd := x.client.B().Ping().Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (x *Index) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := x.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// EnsureIndex creates the FT index for a namespace if it does not exist.
func (x *Index) EnsureIndex(ctx context.Context, namespace string, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}

	args := buildCreateArgs(x.indexName(namespace), x.keyPrefix(namespace), dimensions)
	cmd := x.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := x.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("create index %s: %w", x.indexName(namespace), err)
	}
	return nil
}

// Insert embeds nothing itself: vectors arrive precomputed. Keys are
// content-addressed, so re-inserting the same text overwrites in place.
func (x *Index) Insert(ctx context.Context, namespace string, docs []domain.IndexedChunk) error {
	if len(docs) == 0 {
		return nil
	}
	if err := x.EnsureIndex(ctx, namespace, len(docs[0].Vector)); err != nil {
		return err
	}

	cmds := make(rueidis.Commands, 0, len(docs))
	for _, d := range docs {
		key := x.keyPrefix(namespace) + hashText(d.Text)
		cmds = append(cmds, x.client.B().Hset().Key(key).FieldValue().
			FieldValue("content", d.Text).
			FieldValue("vector", vectorToBytes(d.Vector)).
			Build())
	}

	for _, resp := range x.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("hset: %w", err)
		}
	}
	return nil
}

// Query embeds text and runs a KNN search over the namespace index.
// Scores are cosine similarities (1 - distance, clamped to [0, 1]).
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

	args := buildKNNArgs(x.indexName(namespace), k, vectorToBytes(vecs[0]))
	cmd := x.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := x.client.Do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, fmt.Errorf("namespace %q: %w", namespace, domain.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("ft.search: %w", err)
	}

	return parseKNNReply(raw)
}

func (x *Index) indexName(namespace string) string {
	return x.prefix + namespace
}

func (x *Index) keyPrefix(namespace string) string {
	return x.prefix + namespace + ":doc:"
}

// --- Command building ---

func buildCreateArgs(indexName, keyPrefix string, dimensions int) []string {
	return []string{
		indexName,
		"ON", "HASH",
		"PREFIX", "1", keyPrefix,
		"SCHEMA",
		"content", "TEXT",
		"vector", "VECTOR", "HNSW", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dimensions),
		"DISTANCE_METRIC", "COSINE",
	}
}

func buildKNNArgs(indexName string, k int, blob string) []string {
	return []string{
		indexName,
		fmt.Sprintf("*=>[KNN %d @vector $BLOB]", k),
		"SORTBY", "__vector_score",
		"RETURN", "2", "content", "__vector_score",
		"PARAMS", "2", "BLOB", blob,
		"DIALECT", "2",
		"LIMIT", "0", strconv.Itoa(k),
	}
}

// --- Reply parsing ---

func parseKNNReply(raw []rueidis.RedisMessage) ([]domain.Chunk, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)

		chunk := domain.Chunk{Text: m["content"]}
		if scoreStr, ok := m["__vector_score"]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				chunk.Score = math.Max(0, 1.0-d) // cosine distance → similarity
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Helpers ---

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func hashText(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
