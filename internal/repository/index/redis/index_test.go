package redis

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestBuildCreateArgs(t *testing.T) {
	args := buildCreateArgs("rp:exp_a", "rp:exp_a:doc:", 384)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"rp:exp_a ON HASH",
		"PREFIX 1 rp:exp_a:doc:",
		"DIM 384",
		"DISTANCE_METRIC COSINE",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("create args missing %q: %s", want, joined)
		}
	}
}

func TestBuildKNNArgs(t *testing.T) {
	args := buildKNNArgs("rp:exp_a", 5, "blob")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "*=>[KNN 5 @vector $BLOB]") {
		t.Errorf("missing KNN clause: %s", joined)
	}
	if !strings.Contains(joined, "PARAMS 2 BLOB blob") {
		t.Errorf("missing params: %s", joined)
	}
	if !strings.Contains(joined, "LIMIT 0 5") {
		t.Errorf("missing limit: %s", joined)
	}
	if !strings.Contains(joined, "DIALECT 2") {
		t.Errorf("missing dialect: %s", joined)
	}
}

func TestVectorToBytes_LittleEndianFloat32(t *testing.T) {
	v := []float32{1.5, -2.25}
	b := []byte(vectorToBytes(v))
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	got0 := math.Float32frombits(binary.LittleEndian.Uint32(b[0:4]))
	got1 := math.Float32frombits(binary.LittleEndian.Uint32(b[4:8]))
	if got0 != 1.5 || got1 != -2.25 {
		t.Errorf("round-trip mismatch: %v, %v", got0, got1)
	}
}

func TestHashText_StableAndDistinct(t *testing.T) {
	a1 := hashText("hypothesis one")
	a2 := hashText("hypothesis one")
	b := hashText("hypothesis two")
	if a1 != a2 {
		t.Error("hash not stable for identical text")
	}
	if a1 == b {
		t.Error("distinct texts collided")
	}
	if len(a1) != 40 {
		t.Errorf("expected 40 hex chars, got %d", len(a1))
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	if !containsIgnoreCase("Index already exists", "INDEX ALREADY") {
		t.Error("expected case-insensitive match")
	}
	if containsIgnoreCase("short", "much longer needle") {
		t.Error("needle longer than haystack must not match")
	}
}
