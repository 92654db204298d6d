package vectordb

import "context"

// VectorStore defines the interface for storing embeddings and answering
// top-K similarity queries.
type VectorStore interface {
	// Upsert adds or replaces embedding records. Callers batch large sets
	// to respect the index's batch-size ceiling.
	Upsert(ctx context.Context, records []Record) error

	// QueryByUser returns the topK nearest records restricted to the given
	// user's vectors, in descending similarity order.
	QueryByUser(ctx context.Context, vector []float32, topK int, userID string) ([]Match, error)

	// DeleteByIDs removes the records with the given ids.
	DeleteByIDs(ctx context.Context, ids []string) error

	// Count returns the total number of records in the store.
	Count() int
}

// Record is an embedding record keyed by a deterministic id.
type Record struct {
	ID       string
	Vector   []float32
	Metadata RecordMetadata
}

// RecordMetadata holds the retrieval metadata stored alongside a vector.
type RecordMetadata struct {
	UserID     string
	DocumentID string
	ChunkIndex int
	Text       string
}

// Match pairs a record with its similarity score.
type Match struct {
	ID       string
	Score    float32
	Metadata RecordMetadata
}
