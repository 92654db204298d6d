package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/askdocs/askdocs/internal/documents"
	"github.com/askdocs/askdocs/internal/embeddings"
	"github.com/askdocs/askdocs/internal/extract"
	"github.com/askdocs/askdocs/internal/vectordb"
)

// upsertBatchSize is the vector index's batch ceiling per upsert call.
const upsertBatchSize = 100

// metadataTextLimit caps the text preview stored in vector metadata.
const metadataTextLimit = 1000

// Pipeline runs extraction, chunking, embedding, and persistence for one
// document, driving its PROCESSING -> READY | FAILED state machine.
type Pipeline struct {
	docs         *documents.Store
	embedder     embeddings.Embedder
	vectors      vectordb.VectorStore
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// NewPipeline creates a pipeline with the given chunking parameters.
func NewPipeline(docs *documents.Store, embedder embeddings.Embedder, vectors vectordb.VectorStore, chunkSize, chunkOverlap int, logger *slog.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		docs:         docs,
		embedder:     embedder,
		vectors:      vectors,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Process indexes one document. Any failure transitions the document to
// FAILED; it is never left in PROCESSING once this returns.
func (p *Pipeline) Process(ctx context.Context, documentID string, data []byte, mediaType string) error {
	if err := p.process(ctx, documentID, data, mediaType); err != nil {
		// The failure may be the context itself dying (shutdown, deadline);
		// the FAILED transition must still land.
		if markErr := p.docs.MarkFailed(context.WithoutCancel(ctx), documentID); markErr != nil {
			p.logger.Error("marking document failed", "document_id", documentID, "error", markErr)
		}
		return err
	}
	return nil
}

// Fail transitions a document to FAILED without running the pipeline. Used
// for tasks abandoned at shutdown.
func (p *Pipeline) Fail(ctx context.Context, documentID string) error {
	return p.docs.MarkFailed(ctx, documentID)
}

func (p *Pipeline) process(ctx context.Context, documentID string, data []byte, mediaType string) error {
	doc, err := p.docs.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", documentID)
	}

	res, err := extract.Extract(data, mediaType)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return fmt.Errorf("document %s contains no extractable text", documentID)
	}

	chunks, err := ChunkText(res.Text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return err
	}

	vectors, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	// Stage vector records keyed by deterministic ids alongside the chunk rows.
	records := make([]vectordb.Record, len(chunks))
	rows := make([]documents.Chunk, len(chunks))
	vectorIDs := make([]string, len(chunks))
	for i, content := range chunks {
		embeddingID := fmt.Sprintf("%s_chunk_%d", documentID, i)
		vectorIDs[i] = embeddingID
		records[i] = vectordb.Record{
			ID:     embeddingID,
			Vector: vectors[i],
			Metadata: vectordb.RecordMetadata{
				UserID:     doc.UserID,
				DocumentID: documentID,
				ChunkIndex: i,
				Text:       preview(content, metadataTextLimit),
			},
		}
		rows[i] = documents.Chunk{
			DocumentID:  documentID,
			Content:     content,
			ChunkIndex:  i,
			EmbeddingID: embeddingID,
		}
	}

	for i := 0; i < len(records); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.vectors.Upsert(ctx, records[i:end]); err != nil {
			return fmt.Errorf("upserting vectors: %w", err)
		}
	}

	if err := p.docs.CreateChunks(ctx, rows); err != nil {
		return fmt.Errorf("persisting chunks: %w", err)
	}

	if err := p.docs.MarkReady(ctx, documentID, res.PageCount, len(chunks), vectorIDs); err != nil {
		return fmt.Errorf("marking document ready: %w", err)
	}

	p.logger.Info("document indexed", "document_id", documentID, "chunks", len(chunks))
	return nil
}

func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
