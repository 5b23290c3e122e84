package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := New(1000, 100)
	chunks := s.Split("a short document")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplit_EmptyText(t *testing.T) {
	s := New(1000, 100)
	if chunks := s.Split("   \n\n  "); chunks != nil {
		t.Errorf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	s := New(100, 10)
	text := strings.Repeat("lorem ipsum dolor sit amet ", 50)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d exceeds size: %d chars", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplit_PrefersParagraphBoundary(t *testing.T) {
	s := New(100, 10)
	first := strings.Repeat("x", 70)
	second := strings.Repeat("y", 80)
	chunks := s.Split(first + "\n\n" + second)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != first {
		t.Errorf("expected first chunk to end at the paragraph break, got %q", chunks[0])
	}
}

func TestSplit_OverlapCarriesText(t *testing.T) {
	s := New(50, 20)
	text := strings.Repeat("abcde ", 40)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Consecutive chunks share content due to overlap.
	tail := chunks[0][len(chunks[0])-10:]
	if !strings.Contains(chunks[1], strings.TrimSpace(tail)) {
		t.Errorf("expected chunk 1 to carry overlap from chunk 0 tail %q", tail)
	}
}

func TestSplit_HardCutWithoutSeparators(t *testing.T) {
	s := New(64, 8)
	text := strings.Repeat("z", 200)
	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected >=3 chunks for 200 chars at size 64, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 64 {
			t.Errorf("chunk %d exceeds size: %d", i, len(c))
		}
	}
}
