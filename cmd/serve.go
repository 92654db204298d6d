package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/auth"
	"github.com/askdocs/askdocs/internal/chat"
	"github.com/askdocs/askdocs/internal/config"
	"github.com/askdocs/askdocs/internal/db"
	"github.com/askdocs/askdocs/internal/documents"
	"github.com/askdocs/askdocs/internal/embeddings"
	"github.com/askdocs/askdocs/internal/ingest"
	"github.com/askdocs/askdocs/internal/llm"
	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/server"
	"github.com/askdocs/askdocs/internal/users"
	"github.com/askdocs/askdocs/internal/vectordb"
)

// ingestQueueSize is how many pending uploads the server buffers before
// rejecting new ones.
const ingestQueueSize = 64

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the AskDocs API server",
	Long:  `Starts the AskDocs HTTP server with document upload, background indexing, and streaming chat over the user's documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}

		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		vectors, err := vectordb.NewChromemStore(embedder, filepath.Join(cfg.DataDir, "vectordb"))
		if err != nil {
			return fmt.Errorf("creating vector store: %w", err)
		}

		llmProvider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}

		dbPath := filepath.Join(cfg.DataDir, "askdocs.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		userStore := users.NewStore(database)
		docStore := documents.NewStore(database)
		chatStore := chat.NewStore(database)

		// Background indexing pipeline.
		pipeline := ingest.NewPipeline(docStore, embedder, vectors, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, logger)
		queue := ingest.NewQueue(ingestQueueSize)
		worker := ingest.NewWorker(queue, pipeline, cfg.Ingest.Workers, logger)

		retriever := rag.NewRetriever(embedder, vectors, docStore, cfg.Retrieval.TopK, cfg.Retrieval.MinScore)
		streamer := chat.NewStreamer(chatStore, userStore, retriever, llmProvider, logger)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, server.Deps{
			Verifier:  auth.NewVerifier(cfg.AuthSecret),
			Users:     userStore,
			Documents: docStore,
			Chats:     chatStore,
			Vectors:   vectors,
			Ingestor:  queue,
			Streamer:  streamer,
			Logger:    logger,
		})

		// Graceful shutdown: stop accepting requests, then drain the
		// ingest queue so in-flight uploads finish indexing.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		worker.Start(ctx)

		go func() {
			<-ctx.Done()
			logger.Info("shutting down")
			srv.Shutdown(context.Background())
		}()

		logger.Info("askdocs server starting",
			"version", Version,
			"port", cfg.Port,
			"database", dbPath,
			"vectors", vectors.Count(),
		)

		err = srv.Start()
		worker.Stop()
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

// createEmbedderFromConfig builds the embedder named by the config,
// reading the provider's API key from the environment.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	envVar := config.APIKeyEnvVar(cfg.EmbeddingProvider)
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", envVar)
	}

	switch cfg.EmbeddingProvider {
	case config.ProviderGoogle:
		return embeddings.NewGoogleEmbedder(apiKey, embeddings.GoogleModel(cfg.EmbeddingModel)), nil
	case config.ProviderOpenAI:
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
