package rag

import (
	"context"
	"testing"

	"github.com/askdocs/askdocs/internal/db"
	"github.com/askdocs/askdocs/internal/documents"
	"github.com/askdocs/askdocs/internal/vectordb"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }
func (f *fakeEmbedder) Name() string    { return "fake" }

type fakeVectorStore struct {
	matches []vectordb.Match
	queries int
}

func (f *fakeVectorStore) Upsert(ctx context.Context, records []vectordb.Record) error { return nil }

func (f *fakeVectorStore) QueryByUser(ctx context.Context, vector []float32, topK int, userID string) ([]vectordb.Match, error) {
	f.queries++
	return f.matches, nil
}

func (f *fakeVectorStore) DeleteByIDs(ctx context.Context, ids []string) error { return nil }
func (f *fakeVectorStore) Count() int                                          { return len(f.matches) }

func newTestDocStore(t *testing.T) *documents.Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return documents.NewStore(database)
}

func readyDoc(t *testing.T, store *documents.Store, userID, name string) *documents.Document {
	t.Helper()
	ctx := context.Background()
	doc, err := store.Create(ctx, userID, name, "application/pdf", 100)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkReady(ctx, doc.ID, nil, 1, []string{doc.ID + "_chunk_0"}); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}
	return doc
}

func TestRetrieveNoReadyDocuments(t *testing.T) {
	docs := newTestDocStore(t)
	vectors := &fakeVectorStore{}
	r := NewRetriever(&fakeEmbedder{}, vectors, docs, 6, 0.7)

	chunks, err := r.Retrieve(context.Background(), "anything", "user-1")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
	if vectors.queries != 0 {
		t.Errorf("expected no vector query without READY documents, got %d", vectors.queries)
	}
}

func TestRetrieveFiltersLowScores(t *testing.T) {
	docs := newTestDocStore(t)
	doc := readyDoc(t, docs, "user-1", "handbook.pdf")

	vectors := &fakeVectorStore{matches: []vectordb.Match{
		{ID: "a", Score: 0.92, Metadata: vectordb.RecordMetadata{UserID: "user-1", DocumentID: doc.ID, ChunkIndex: 0, Text: "high"}},
		{ID: "b", Score: 0.69, Metadata: vectordb.RecordMetadata{UserID: "user-1", DocumentID: doc.ID, ChunkIndex: 1, Text: "low"}},
	}}
	r := NewRetriever(&fakeEmbedder{}, vectors, docs, 6, 0.7)

	chunks, err := r.Retrieve(context.Background(), "q", "user-1")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk above threshold, got %d", len(chunks))
	}
	if chunks[0].ChunkID != "a" || chunks[0].Content != "high" {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
	if chunks[0].DocumentName != "handbook.pdf" {
		t.Errorf("expected document name resolved, got %q", chunks[0].DocumentName)
	}
}

func TestRetrieveSkipsStaleDocuments(t *testing.T) {
	docs := newTestDocStore(t)
	doc := readyDoc(t, docs, "user-1", "kept.pdf")

	// A match pointing at a document id with no READY row simulates a
	// stale index entry left behind by a deletion.
	vectors := &fakeVectorStore{matches: []vectordb.Match{
		{ID: "live", Score: 0.9, Metadata: vectordb.RecordMetadata{UserID: "user-1", DocumentID: doc.ID, Text: "live"}},
		{ID: "stale", Score: 0.95, Metadata: vectordb.RecordMetadata{UserID: "user-1", DocumentID: "gone", Text: "stale"}},
	}}
	r := NewRetriever(&fakeEmbedder{}, vectors, docs, 6, 0.7)

	chunks, err := r.Retrieve(context.Background(), "q", "user-1")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected stale match dropped, got %d chunks", len(chunks))
	}
	if chunks[0].ChunkID != "live" {
		t.Errorf("expected live chunk, got %q", chunks[0].ChunkID)
	}
}

func TestRetrieveDefaults(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeVectorStore{}, newTestDocStore(t), 0, 0)
	if r.topK != DefaultTopK {
		t.Errorf("expected topK %d, got %d", DefaultTopK, r.topK)
	}
	if r.minScore != float32(DefaultMinScore) {
		t.Errorf("expected minScore %v, got %v", DefaultMinScore, r.minScore)
	}
}
