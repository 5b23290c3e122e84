package domain

// Chunk is a retrieved span of source text with the relevance score the
// index returned for it. Immutable once retrieved.
type Chunk struct {
	Text  string
	Score float64
}

// IndexedChunk pairs a chunk of source text with its embedding for insertion.
type IndexedChunk struct {
	Text   string
	Vector []float32
}

// SamplingParams are the decoding parameters for one generation call.
type SamplingParams struct {
	Temperature  float32
	TopP         float32
	MaxNewTokens int
}
