package ingest

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkTextEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		chunks, err := ChunkText(text, 512, 50)
		if err != nil {
			t.Fatalf("ChunkText(%q): %v", text, err)
		}
		if chunks != nil {
			t.Errorf("expected nil chunks for %q, got %v", text, chunks)
		}
	}
}

func TestChunkTextSingleChunk(t *testing.T) {
	chunks, err := ChunkText("one two three", 512, 50)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "one two three" {
		t.Errorf("expected full text, got %q", chunks[0])
	}
}

func TestChunkTextExactBoundary(t *testing.T) {
	// Exactly one window: no second chunk, no trailing overlap remnant.
	chunks, err := ChunkText(words(512), 512, 50)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestChunkTextOverlap(t *testing.T) {
	chunks, err := ChunkText(words(600), 512, 50)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	if len(first) != 512 {
		t.Errorf("expected first chunk of 512 words, got %d", len(first))
	}
	// Second chunk starts 50 words before the first ends.
	if second[0] != first[512-50] {
		t.Errorf("expected overlap to start at %q, got %q", first[512-50], second[0])
	}
	if second[len(second)-1] != "w599" {
		t.Errorf("expected last word w599, got %q", second[len(second)-1])
	}
}

func TestChunkTextNoOverlap(t *testing.T) {
	chunks, err := ChunkText(words(10), 4, 0)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[1] != "w4 w5 w6 w7" {
		t.Errorf("unexpected second chunk: %q", chunks[1])
	}
	if chunks[2] != "w8 w9" {
		t.Errorf("unexpected final chunk: %q", chunks[2])
	}
}

func TestChunkTextCollapsesWhitespace(t *testing.T) {
	chunks, err := ChunkText("a\n\nb\t c   d", 512, 50)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	if chunks[0] != "a b c d" {
		t.Errorf("expected normalized whitespace, got %q", chunks[0])
	}
}

func TestChunkTextInvalidOverlap(t *testing.T) {
	if _, err := ChunkText("a b c", 4, 4); err == nil {
		t.Fatal("expected error for overlap == size")
	}
	if _, err := ChunkText("a b c", 4, 5); err == nil {
		t.Fatal("expected error for overlap > size")
	}
}
