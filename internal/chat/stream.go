package chat

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/askdocs/askdocs/internal/llm"
	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/users"
)

// historyLimit caps how many prior messages are replayed to the model.
const historyLimit = 10

// titleMaxLen caps the auto-derived chat title length in characters.
const titleMaxLen = 80

// ContextRetriever finds a user's document chunks relevant to a query.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query, userID string) ([]rag.RetrievedChunk, error)
}

// Streamer runs the retrieval-augmented answer flow for one chat message
// and relays the model output to the client as SSE.
type Streamer struct {
	store     *Store
	users     *users.Store
	retriever ContextRetriever
	provider  llm.Provider
	logger    *slog.Logger
}

// NewStreamer creates a streamer.
func NewStreamer(store *Store, userStore *users.Store, retriever ContextRetriever, provider llm.Provider, logger *slog.Logger) *Streamer {
	return &Streamer{
		store:     store,
		users:     userStore,
		retriever: retriever,
		provider:  provider,
		logger:    logger,
	}
}

// Stream handles one user message: persist it, retrieve context, stream
// the model's answer as text deltas, then emit citations and the done
// sentinel. The user message survives even when the model call fails.
func (s *Streamer) Stream(w http.ResponseWriter, r *http.Request, userID, chatID, content string) {
	ctx := r.Context()

	c, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		s.logger.Error("loading chat", "chat_id", chatID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if c == nil || c.UserID != userID {
		writeJSONError(w, http.StatusNotFound, "Chat not found")
		return
	}

	// Once persistence and streaming begin, a client disconnect must not
	// abort the model call or the final writes.
	persistCtx := context.WithoutCancel(ctx)

	userMsg, err := s.store.AddMessage(persistCtx, chatID, RoleUser, content, nil)
	if err != nil {
		s.logger.Error("persisting user message", "chat_id", chatID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if c.Title == DefaultTitle {
		go s.autoTitle(chatID, content)
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	loc, err := s.users.GetLocation(ctx, userID)
	if err != nil {
		s.logger.Warn("loading user location", "user_id", userID, "error", err)
		loc = users.Location{}
	}

	chunks, err := s.retriever.Retrieve(ctx, content, userID)
	if err != nil {
		s.logger.Error("retrieving context", "chat_id", chatID, "error", err)
		sse.sendJSON(map[string]any{"error": "Stream failed"})
		return
	}

	docCitations := make([]Citation, 0, len(chunks))
	for _, chunk := range chunks {
		docCitations = append(docCitations, Citation{
			Type:         CitationDocument,
			ChunkID:      chunk.ChunkID,
			DocumentName: chunk.DocumentName,
			Score:        chunk.Score,
			Text:         chunk.Content,
		})
	}

	messages, err := s.history(ctx, chatID, userMsg.ID)
	if err != nil {
		s.logger.Error("loading chat history", "chat_id", chatID, "error", err)
		sse.sendJSON(map[string]any{"error": "Stream failed"})
		return
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: rag.BuildPrompt(content, chunks, loc),
	})

	// A broken client connection must not abort the stream mid-answer,
	// so delta write failures are noted and the model call runs on.
	clientGone := false
	result, err := s.provider.CompleteStream(persistCtx, llm.CompletionRequest{
		Messages:  messages,
		WebSearch: true,
	}, func(delta string) error {
		if clientGone {
			return nil
		}
		if err := sse.sendJSON(map[string]any{"text": delta}); err != nil {
			clientGone = true
			s.logger.Warn("client disconnected mid-stream", "chat_id", chatID, "error", err)
		}
		return nil
	})
	if err != nil || result.Content == "" {
		if err != nil {
			s.logger.Error("model stream failed", "chat_id", chatID, "error", err)
		}
		sse.sendJSON(map[string]any{"error": "Stream failed"})
		return
	}

	citations := append(docCitations, webCitations(result)...)

	if _, err := s.store.AddMessage(persistCtx, chatID, RoleAssistant, result.Content, citations); err != nil {
		s.logger.Error("persisting assistant message", "chat_id", chatID, "error", err)
		sse.sendJSON(map[string]any{"error": "Stream failed"})
		return
	}
	if err := s.store.TouchChat(persistCtx, chatID); err != nil {
		s.logger.Warn("touching chat", "chat_id", chatID, "error", err)
	}

	if clientGone {
		return
	}
	sse.sendJSON(map[string]any{"citations": citations})
	sse.sendDone()
}

// history returns the chat's recent messages as model turns, excluding the
// just-inserted user message which re-enters via the built prompt.
func (s *Streamer) history(ctx context.Context, chatID, excludeID string) ([]llm.Message, error) {
	recent, err := s.store.RecentMessages(ctx, chatID, historyLimit)
	if err != nil {
		return nil, err
	}

	var messages []llm.Message
	for _, m := range recent {
		if m.ID == excludeID {
			continue
		}
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	return messages, nil
}

// autoTitle derives the chat title from the first user message.
func (s *Streamer) autoTitle(chatID, content string) {
	title := strings.TrimSpace(content)
	if runes := []rune(title); len(runes) > titleMaxLen {
		title = string(runes[:titleMaxLen])
	}
	if title == "" {
		return
	}
	if err := s.store.RenameChat(context.Background(), chatID, title); err != nil {
		s.logger.Warn("auto-titling chat", "chat_id", chatID, "error", err)
	}
}

// webCitations converts the model's grounding metadata into citations.
// Sources are deduplicated by URL; when the model searched but reported no
// sources, the search queries themselves become linkable citations.
func webCitations(result *llm.StreamResult) []Citation {
	var citations []Citation
	seen := map[string]bool{}
	for _, src := range result.WebSources {
		if src.URL == "" || seen[src.URL] {
			continue
		}
		seen[src.URL] = true
		name := src.Title
		if name == "" {
			name = "Web source"
		}
		citations = append(citations, Citation{
			Type:       CitationWeb,
			URL:        src.URL,
			SourceName: name,
		})
	}

	if len(citations) == 0 {
		for _, q := range result.SearchQueries {
			citations = append(citations, Citation{
				Type:       CitationWeb,
				URL:        "https://www.google.com/search?q=" + url.QueryEscape(q),
				SourceName: q,
			})
		}
	}
	return citations
}
