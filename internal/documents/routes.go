package documents

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/askdocs/askdocs/internal/auth"
	"github.com/askdocs/askdocs/internal/extract"
	"github.com/askdocs/askdocs/internal/vectordb"
)

// MaxUploadSize is the upload size ceiling.
const MaxUploadSize = 20 << 20 // 20MB

// Ingestor accepts upload-completed tasks for background processing.
type Ingestor interface {
	Enqueue(documentID string, data []byte, mediaType string) error
}

// RegisterRoutes mounts the document API routes.
func RegisterRoutes(r chi.Router, store *Store, vectors vectordb.VectorStore, ingestor Ingestor, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/upload", handleUpload(store, ingestor, logger))
		r.Get("/", handleList(store))
		r.Delete("/{documentID}", handleDelete(store, vectors))
	})
}

func handleUpload(store *Store, ingestor Ingestor, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Cap the request body a little above the file ceiling to leave
		// room for the multipart framing.
		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error":"No file provided"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()

		mediaType := fileMediaType(header.Header.Get("Content-Type"), header.Filename)
		if !extract.Supported(mediaType) {
			http.Error(w, `{"error":"Unsupported file type. Upload PDF, DOCX, or TXT files."}`, http.StatusBadRequest)
			return
		}

		if header.Size > MaxUploadSize {
			http.Error(w, `{"error":"File size exceeds 20MB limit."}`, http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			http.Error(w, `{"error":"reading upload"}`, http.StatusBadRequest)
			return
		}
		if int64(len(data)) > MaxUploadSize {
			http.Error(w, `{"error":"File size exceeds 20MB limit."}`, http.StatusBadRequest)
			return
		}

		doc, err := store.Create(r.Context(), auth.UserID(r.Context()), header.Filename, mediaType, int64(len(data)))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		// Processing continues in the background; the client polls status.
		if err := ingestor.Enqueue(doc.ID, data, mediaType); err != nil {
			if markErr := store.MarkFailed(r.Context(), doc.ID); markErr != nil {
				logger.Error("marking document failed", "document_id", doc.ID, "error", markErr)
			}
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"message":    "Document uploaded",
			"documentId": doc.ID,
		})
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := store.ListByUser(r.Context(), auth.UserID(r.Context()))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if docs == nil {
			docs = []Document{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	}
}

func handleDelete(store *Store, vectors vectordb.VectorStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "documentID")

		doc, err := store.Get(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		// A uniform 404 never leaks other users' documents.
		if doc == nil || doc.UserID != auth.UserID(r.Context()) {
			http.Error(w, `{"error":"Document not found"}`, http.StatusNotFound)
			return
		}

		// Vector-index entries go first, then the relational rows.
		if err := vectors.DeleteByIDs(r.Context(), doc.VectorIDs); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if err := store.Delete(r.Context(), id); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Document deleted"})
	}
}

// fileMediaType prefers the declared content type and falls back to the
// file extension when the client sent a generic one.
func fileMediaType(declared, filename string) string {
	declared = strings.TrimSpace(strings.Split(declared, ";")[0])
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extract.MediaTypePDF
	case ".docx":
		return extract.MediaTypeDOCX
	case ".txt":
		return extract.MediaTypeText
	case ".md", ".markdown":
		return extract.MediaTypeMarkdown
	}
	return declared
}
