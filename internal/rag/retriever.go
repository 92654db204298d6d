package rag

import (
	"context"
	"fmt"

	"github.com/askdocs/askdocs/internal/documents"
	"github.com/askdocs/askdocs/internal/embeddings"
	"github.com/askdocs/askdocs/internal/vectordb"
)

// Retrieval defaults.
const (
	DefaultTopK     = 6
	DefaultMinScore = 0.7
)

// RetrievedChunk is one ranked retrieval result enriched with its
// document's name.
type RetrievedChunk struct {
	ChunkID      string
	DocumentID   string
	DocumentName string
	Content      string
	Score        float32
	ChunkIndex   int
}

// Retriever answers similarity queries over a user's READY documents.
type Retriever struct {
	embedder embeddings.Embedder
	vectors  vectordb.VectorStore
	docs     *documents.Store
	topK     int
	minScore float32
}

// NewRetriever creates a retriever with the given ranking parameters.
func NewRetriever(embedder embeddings.Embedder, vectors vectordb.VectorStore, docs *documents.Store, topK int, minScore float64) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Retriever{
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		topK:     topK,
		minScore: float32(minScore),
	}
}

// Retrieve embeds the query and returns the user's best-matching chunks in
// descending score order. Users with no READY documents get an empty result
// without a vector-index call.
func (r *Retriever) Retrieve(ctx context.Context, query, userID string) ([]RetrievedChunk, error) {
	queryVectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(queryVectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	docNames, err := r.docs.ReadyByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(docNames) == 0 {
		return nil, nil
	}

	matches, err := r.vectors.QueryByUser(ctx, queryVectors[0], r.topK, userID)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	var chunks []RetrievedChunk
	for _, match := range matches {
		if match.Score < r.minScore {
			continue
		}
		// Skip vectors whose document is gone or not READY — defends
		// against stale index entries.
		name, ok := docNames[match.Metadata.DocumentID]
		if !ok {
			continue
		}

		chunks = append(chunks, RetrievedChunk{
			ChunkID:      match.ID,
			DocumentID:   match.Metadata.DocumentID,
			DocumentName: name,
			Content:      match.Metadata.Text,
			Score:        match.Score,
			ChunkIndex:   match.Metadata.ChunkIndex,
		})
	}

	return chunks, nil
}
