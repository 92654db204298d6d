package chat

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/askdocs/askdocs/internal/auth"
)

// RegisterRoutes mounts the chat API routes.
func RegisterRoutes(r chi.Router, store *Store, streamer *Streamer) {
	r.Route("/api/chats", func(r chi.Router) {
		r.Post("/", handleCreate(store))
		r.Get("/", handleList(store))
		r.Delete("/{chatID}", handleDelete(store))
		r.Get("/{chatID}/messages", handleListMessages(store))
		r.Post("/{chatID}/messages", handleSendMessage(streamer))
	})
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title string `json:"title"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&body) // absent or empty body is fine
		}

		c, err := store.CreateChat(r.Context(), auth.UserID(r.Context()), strings.TrimSpace(body.Title))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(c)
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := store.ListChats(r.Context(), auth.UserID(r.Context()))
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if chats == nil {
			chats = []Chat{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chats)
	}
}

func handleDelete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := ownedChat(w, r, store)
		if !ok {
			return
		}

		if err := store.DeleteChat(r.Context(), c.ID); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Chat deleted"})
	}
}

func handleListMessages(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := ownedChat(w, r, store)
		if !ok {
			return
		}

		messages, err := store.ListMessages(r.Context(), c.ID)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if messages == nil {
			messages = []Message{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messages)
	}
}

func handleSendMessage(streamer *Streamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "Message is required")
			return
		}

		content := strings.TrimSpace(body.Content)
		if content == "" {
			writeJSONError(w, http.StatusBadRequest, "Message is required")
			return
		}

		streamer.Stream(w, r, auth.UserID(r.Context()), chi.URLParam(r, "chatID"), content)
	}
}

// ownedChat loads the chat from the URL and enforces ownership with a
// uniform 404 so chat IDs never leak across users.
func ownedChat(w http.ResponseWriter, r *http.Request, store *Store) (*Chat, bool) {
	c, err := store.GetChat(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if c == nil || c.UserID != auth.UserID(r.Context()) {
		writeJSONError(w, http.StatusNotFound, "Chat not found")
		return nil, false
	}
	return c, true
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
