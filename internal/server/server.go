package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askdocs/askdocs/internal/auth"
	"github.com/askdocs/askdocs/internal/chat"
	"github.com/askdocs/askdocs/internal/documents"
	"github.com/askdocs/askdocs/internal/users"
	"github.com/askdocs/askdocs/internal/vectordb"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Deps bundles the feature stores and services the router mounts.
type Deps struct {
	Verifier  *auth.Verifier
	Users     *users.Store
	Documents *documents.Store
	Chats     *chat.Store
	Vectors   vectordb.VectorStore
	Ingestor  documents.Ingestor
	Streamer  *chat.Streamer
	Logger    *slog.Logger
}

// Server is the AskDocs HTTP API server.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies wired into the router.
func New(cfg Config, deps Deps) *Server {
	s := &Server{cfg: cfg, deps: deps}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// All /api routes require a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(s.deps.Verifier.Middleware)

		users.RegisterRoutes(r, s.deps.Users)
		documents.RegisterRoutes(r, s.deps.Documents, s.deps.Vectors, s.deps.Ingestor, s.deps.Logger)
		chat.RegisterRoutes(r, s.deps.Chats, s.deps.Streamer)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: chat responses stream over SSE for as long as
		// the model keeps producing tokens.
		IdleTimeout: 120 * time.Second,
	}

	s.deps.Logger.Info("server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
