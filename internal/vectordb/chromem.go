package vectordb

import (
	"context"
	"fmt"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/askdocs/askdocs/internal/embeddings"
)

const collectionName = "askdocs"

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore creates a ChromemStore persisted under dir, or an
// in-memory store when dir is empty.
func NewChromemStore(embedder embeddings.Embedder, dir string) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if dir == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dir, true)
		if err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Metadata.Text,
			Embedding: rec.Vector,
			Metadata:  metadataToMap(rec.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) QueryByUser(ctx context.Context, vector []float32, topK int, userID string) ([]Match, error) {
	if topK <= 0 {
		topK = 10
	}

	// chromem-go requires nResults <= collection size.
	if count := s.collection.Count(); count == 0 {
		return nil, nil
	} else if topK > count {
		topK = count
	}

	where := map[string]string{"user_id": userID}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			ID:       r.ID,
			Score:    r.Similarity,
			Metadata: mapToMetadata(r.Metadata),
		}
	}

	return matches, nil
}

func (s *ChromemStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.collection.Delete(ctx, nil, nil, ids...)
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// metadataToMap converts RecordMetadata to a flat map[string]string for chromem.
func metadataToMap(m RecordMetadata) map[string]string {
	return map[string]string{
		"user_id":     m.UserID,
		"document_id": m.DocumentID,
		"chunk_index": strconv.Itoa(m.ChunkIndex),
		"text":        m.Text,
	}
}

// mapToMetadata converts a flat map[string]string back to RecordMetadata.
func mapToMetadata(m map[string]string) RecordMetadata {
	chunkIndex, _ := strconv.Atoi(m["chunk_index"])
	return RecordMetadata{
		UserID:     m["user_id"],
		DocumentID: m["document_id"],
		ChunkIndex: chunkIndex,
		Text:       m["text"],
	}
}
