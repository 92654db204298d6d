package ingest

import (
	"errors"
	"strings"
)

// Chunking defaults.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50
)

// ErrInvalidChunking is returned when the overlap is at least the chunk
// size, which would keep the window from ever advancing.
var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// ChunkText splits text into overlapping word windows of size words,
// advancing by size-overlap words. The last window may be shorter. Empty
// or whitespace-only text yields no chunks.
func ChunkText(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidChunking
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end := start + size
		if end > len(words) {
			end = len(words)
		}

		chunk := strings.TrimSpace(strings.Join(words[start:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(words) {
			break
		}
		start = end - overlap
	}

	return chunks, nil
}
