package users

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askdocs/askdocs/internal/auth"
)

// RegisterRoutes mounts the user profile API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/user", func(r chi.Router) {
		r.Get("/location", handleGetLocation(store))
		r.Put("/location", handleSetLocation(store))
	})
}

func handleGetLocation(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := store.GetLocation(r.Context(), auth.UserID(r.Context()))
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(loc)
	}
}

func handleSetLocation(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loc Location
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if err := store.SetLocation(r.Context(), auth.UserID(r.Context()), loc); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(loc)
	}
}
