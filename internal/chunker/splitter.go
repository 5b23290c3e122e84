// Package chunker splits source documents into overlapping chunks suitable
// for embedding and retrieval.
package chunker

import "strings"

// Splitter cuts text into chunks of at most chunkSize characters with
// overlap characters carried between consecutive chunks. Cuts prefer
// paragraph, then newline, then space boundaries before falling back to a
// hard cut.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. chunkSize defaults to 1000, overlap to 100;
// overlap is clamped below chunkSize.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 100
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

var separators = []string{"\n\n", "\n", " "}

// Split returns the chunks of text in document order. Whitespace-only
// input yields no chunks.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > s.chunkSize {
		cut := s.findCut(text)
		chunk := strings.TrimSpace(text[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		next := cut - s.overlap
		if next <= 0 {
			next = cut
		}
		text = strings.TrimLeft(text[next:], " \n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// findCut picks the best boundary at or before chunkSize.
func (s *Splitter) findCut(text string) int {
	window := text[:s.chunkSize]
	// Don't break too close to the start: a boundary in the first half
	// would produce degenerate chunks.
	floor := s.chunkSize / 2
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx >= floor {
			return idx + len(sep)
		}
	}
	return s.chunkSize
}
