package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/askdocs/askdocs/internal/db"
)

// Store manages persistence of documents and their chunks.
type Store struct {
	db *db.DB
}

// NewStore creates a new document store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new document in PROCESSING state and returns it.
func (s *Store) Create(ctx context.Context, userID, name, mediaType string, byteSize int64) (*Document, error) {
	doc := Document{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		MediaType: mediaType,
		ByteSize:  byteSize,
		Status:    StatusProcessing,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, name, media_type, byte_size, status, vector_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, '[]', ?)`,
		doc.ID, doc.UserID, doc.Name, doc.MediaType, doc.ByteSize, doc.Status, doc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return &doc, nil
}

// Get retrieves a document by id. Returns nil if it doesn't exist.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, media_type, byte_size, page_count, chunk_count, status, vector_ids, created_at
		 FROM documents WHERE id = ?`, id,
	)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// ListByUser returns all of a user's documents, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, media_type, byte_size, page_count, chunk_count, status, vector_ids, created_at
		 FROM documents WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ReadyByUser returns an id -> name lookup of the user's READY documents.
func (s *Store) ReadyByUser(ctx context.Context, userID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM documents WHERE user_id = ? AND status = ?`,
		userID, StatusReady,
	)
	if err != nil {
		return nil, fmt.Errorf("listing ready documents: %w", err)
	}
	defer rows.Close()

	lookup := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning ready document: %w", err)
		}
		lookup[id] = name
	}
	return lookup, rows.Err()
}

// MarkReady transitions a PROCESSING document to READY with its final
// page count, chunk count, and vector ids. Terminal documents are untouched.
func (s *Store) MarkReady(ctx context.Context, id string, pageCount *int, chunkCount int, vectorIDs []string) error {
	ids, err := json.Marshal(vectorIDs)
	if err != nil {
		return fmt.Errorf("marshalling vector ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, page_count = ?, chunk_count = ?, vector_ids = ?
		 WHERE id = ? AND status = ?`,
		StatusReady, nullableInt(pageCount), chunkCount, string(ids), id, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("marking document ready: %w", err)
	}
	return nil
}

// MarkFailed transitions a PROCESSING document to FAILED. Terminal
// documents are untouched.
func (s *Store) MarkFailed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ? AND status = ?`,
		StatusFailed, id, StatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("marking document failed: %w", err)
	}
	return nil
}

// CreateChunks persists all chunk rows for a document in one transaction.
func (s *Store) CreateChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, content, chunk_index, embedding_id) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, c.DocumentID, c.Content, c.ChunkIndex, c.EmbeddingID); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit()
}

// CountChunks returns the number of persisted chunks for a document.
func (s *Store) CountChunks(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentID,
	).Scan(&count)
	return count, err
}

// Delete removes a document and its chunks. Vector-index entries are the
// caller's responsibility and must be removed first.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var pageCount, chunkCount sql.NullInt64
	var vectorIDs string
	err := row.Scan(&doc.ID, &doc.UserID, &doc.Name, &doc.MediaType, &doc.ByteSize,
		&pageCount, &chunkCount, &doc.Status, &vectorIDs, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}

	if pageCount.Valid {
		n := int(pageCount.Int64)
		doc.PageCount = &n
	}
	if chunkCount.Valid {
		n := int(chunkCount.Int64)
		doc.ChunkCount = &n
	}
	if err := json.Unmarshal([]byte(vectorIDs), &doc.VectorIDs); err != nil {
		return nil, fmt.Errorf("parsing vector ids: %w", err)
	}
	return &doc, nil
}

func nullableInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
