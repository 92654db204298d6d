package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/askdocs/askdocs/internal/db"
	"github.com/askdocs/askdocs/internal/documents"
	"github.com/askdocs/askdocs/internal/extract"
	"github.com/askdocs/askdocs/internal/vectordb"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }
func (s *stubEmbedder) Name() string    { return "stub" }

type memVectorStore struct {
	records map[string]vectordb.Record
}

func newMemVectorStore() *memVectorStore {
	return &memVectorStore{records: make(map[string]vectordb.Record)}
}

func (m *memVectorStore) Upsert(ctx context.Context, records []vectordb.Record) error {
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *memVectorStore) QueryByUser(ctx context.Context, vector []float32, topK int, userID string) ([]vectordb.Match, error) {
	return nil, nil
}

func (m *memVectorStore) DeleteByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *memVectorStore) Count() int { return len(m.records) }

func newTestDocs(t *testing.T) *documents.Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return documents.NewStore(database)
}

func TestProcessTextDocument(t *testing.T) {
	docs := newTestDocs(t)
	vectors := newMemVectorStore()
	pipeline := NewPipeline(docs, &stubEmbedder{}, vectors, 4, 1, nil)
	ctx := context.Background()

	doc, err := docs.Create(ctx, "user-1", "notes.txt", extract.MediaTypeText, 100)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	text := "one two three four five six seven eight nine ten"
	if err := pipeline.Process(ctx, doc.ID, []byte(text), extract.MediaTypeText); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got, err := docs.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != documents.StatusReady {
		t.Fatalf("expected READY, got %s", got.Status)
	}
	if got.ChunkCount == nil || *got.ChunkCount == 0 {
		t.Fatalf("expected chunk count, got %v", got.ChunkCount)
	}

	n, err := docs.CountChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("CountChunks: %v", err)
	}
	if n != *got.ChunkCount {
		t.Errorf("chunk rows %d != chunk count %d", n, *got.ChunkCount)
	}
	if vectors.Count() != n {
		t.Errorf("vector records %d != chunk rows %d", vectors.Count(), n)
	}

	// Vector ids are deterministic and joinable back to the document.
	firstID := fmt.Sprintf("%s_chunk_0", doc.ID)
	rec, ok := vectors.records[firstID]
	if !ok {
		t.Fatalf("expected vector record %s", firstID)
	}
	if rec.Metadata.UserID != "user-1" || rec.Metadata.DocumentID != doc.ID {
		t.Errorf("unexpected metadata: %+v", rec.Metadata)
	}
	if rec.Metadata.Text != "one two three four" {
		t.Errorf("expected chunk text in metadata, got %q", rec.Metadata.Text)
	}
	if len(got.VectorIDs) != n || got.VectorIDs[0] != firstID {
		t.Errorf("unexpected vector ids: %v", got.VectorIDs)
	}
}

func TestProcessEmptyDocumentFails(t *testing.T) {
	docs := newTestDocs(t)
	pipeline := NewPipeline(docs, &stubEmbedder{}, newMemVectorStore(), 0, -1, nil)
	ctx := context.Background()

	doc, err := docs.Create(ctx, "user-1", "empty.txt", extract.MediaTypeText, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := pipeline.Process(ctx, doc.ID, []byte("  \n\t "), extract.MediaTypeText); err == nil {
		t.Fatal("expected error for empty document")
	}

	got, _ := docs.Get(ctx, doc.ID)
	if got.Status != documents.StatusFailed {
		t.Errorf("expected FAILED, got %s", got.Status)
	}
}

func TestProcessExtractFailureMarksFailed(t *testing.T) {
	docs := newTestDocs(t)
	pipeline := NewPipeline(docs, &stubEmbedder{}, newMemVectorStore(), 0, -1, nil)
	ctx := context.Background()

	doc, err := docs.Create(ctx, "user-1", "bad.pdf", extract.MediaTypePDF, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := pipeline.Process(ctx, doc.ID, []byte("not a pdf"), extract.MediaTypePDF); err == nil {
		t.Fatal("expected error for malformed pdf")
	}

	got, _ := docs.Get(ctx, doc.ID)
	if got.Status != documents.StatusFailed {
		t.Errorf("expected FAILED, got %s", got.Status)
	}
}

func TestProcessEmbedFailureMarksFailed(t *testing.T) {
	docs := newTestDocs(t)
	vectors := newMemVectorStore()
	pipeline := NewPipeline(docs, &stubEmbedder{err: errors.New("quota exceeded")}, vectors, 0, -1, nil)
	ctx := context.Background()

	doc, err := docs.Create(ctx, "user-1", "notes.txt", extract.MediaTypeText, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := pipeline.Process(ctx, doc.ID, []byte("some text"), extract.MediaTypeText); err == nil {
		t.Fatal("expected error from embedder")
	}

	got, _ := docs.Get(ctx, doc.ID)
	if got.Status != documents.StatusFailed {
		t.Errorf("expected FAILED, got %s", got.Status)
	}
	if vectors.Count() != 0 {
		t.Errorf("expected no vectors on failure, got %d", vectors.Count())
	}
}

func TestProcessCancelledContextMarksFailed(t *testing.T) {
	docs := newTestDocs(t)
	pipeline := NewPipeline(docs, &stubEmbedder{}, newMemVectorStore(), 0, -1, nil)

	doc, err := docs.Create(context.Background(), "user-1", "notes.txt", extract.MediaTypeText, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pipeline.Process(ctx, doc.ID, []byte("some text"), extract.MediaTypeText); err == nil {
		t.Fatal("expected error under cancelled context")
	}

	// The FAILED transition must land even though the task context is dead.
	got, err := docs.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != documents.StatusFailed {
		t.Errorf("expected FAILED, got %s", got.Status)
	}
}

func TestProcessUnknownDocument(t *testing.T) {
	docs := newTestDocs(t)
	pipeline := NewPipeline(docs, &stubEmbedder{}, newMemVectorStore(), 0, -1, nil)

	if err := pipeline.Process(context.Background(), "ghost", []byte("text"), extract.MediaTypeText); err == nil {
		t.Fatal("expected error for unknown document")
	}
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := NewQueue(1)
	if err := q.Enqueue("a", nil, extract.MediaTypeText); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue("b", nil, extract.MediaTypeText); err == nil {
		t.Fatal("expected error for full queue")
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(4)
	q.Close()
	if err := q.Enqueue("a", nil, extract.MediaTypeText); err == nil {
		t.Fatal("expected error after close")
	}
	q.Close() // double close must be safe
}

func TestWorkerProcessesQueuedTasks(t *testing.T) {
	docs := newTestDocs(t)
	pipeline := NewPipeline(docs, &stubEmbedder{}, newMemVectorStore(), 0, -1, nil)
	ctx := context.Background()

	doc, err := docs.Create(ctx, "user-1", "notes.txt", extract.MediaTypeText, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	q := NewQueue(4)
	w := NewWorker(q, pipeline, 2, nil)
	w.Start(ctx)

	if err := q.Enqueue(doc.ID, []byte("hello from the queue"), extract.MediaTypeText); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// Stop drains the queue before returning.
	w.Stop()

	got, err := docs.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != documents.StatusReady {
		t.Errorf("expected READY after drain, got %s", got.Status)
	}
}

func TestWorkerShutdownFailsQueuedTasks(t *testing.T) {
	docs := newTestDocs(t)
	pipeline := NewPipeline(docs, &stubEmbedder{}, newMemVectorStore(), 0, -1, nil)
	ctx := context.Background()

	first, err := docs.Create(ctx, "user-1", "a.txt", extract.MediaTypeText, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := docs.Create(ctx, "user-1", "b.txt", extract.MediaTypeText, 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	q := NewQueue(4)
	if err := q.Enqueue(first.ID, []byte("text one"), extract.MediaTypeText); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(second.ID, []byte("text two"), extract.MediaTypeText); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// The run context is already cancelled, as on SIGTERM: queued tasks
	// must not be dropped still PROCESSING.
	runCtx, cancel := context.WithCancel(ctx)
	cancel()

	w := NewWorker(q, pipeline, 1, nil)
	w.Start(runCtx)
	w.Stop()

	for _, id := range []string{first.ID, second.ID} {
		got, err := docs.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status == documents.StatusProcessing {
			t.Errorf("document %s left in PROCESSING after shutdown", id)
		}
	}
}

func TestWorkerStopIsIdempotent(t *testing.T) {
	q := NewQueue(1)
	w := NewWorker(q, NewPipeline(newTestDocs(t), &stubEmbedder{}, newMemVectorStore(), 0, -1, nil), 1, nil)
	w.Start(context.Background())
	w.Stop()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second Stop blocked")
	}
}
