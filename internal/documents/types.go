package documents

import "time"

// Status is the processing state of a document. PROCESSING is initial;
// READY and FAILED are terminal.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
	StatusFailed     Status = "FAILED"
)

// Document is an uploaded file owned by exactly one user.
type Document struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Name       string    `json:"name"`
	MediaType  string    `json:"mediaType"`
	ByteSize   int64     `json:"byteSize"`
	PageCount  *int      `json:"pageCount"`
	ChunkCount *int      `json:"chunkCount"`
	Status     Status    `json:"status"`
	VectorIDs  []string  `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Chunk is one word-window slice of a document's extracted text. Immutable
// once created; EmbeddingID is the join key into the vector index.
type Chunk struct {
	ID          string `json:"id"`
	DocumentID  string `json:"documentId"`
	Content     string `json:"content"`
	ChunkIndex  int    `json:"chunkIndex"`
	EmbeddingID string `json:"embeddingId"`
}
