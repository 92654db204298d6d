package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:              8080,
		DataDir:           "data",
		Provider:          ProviderGoogle,
		Model:             "gemini-2.5-flash",
		EmbeddingProvider: ProviderGoogle,
		EmbeddingModel:    "text-embedding-004",
		Retrieval: RetrievalConfig{
			TopK:     6,
			MinScore: 0.7,
		},
		Ingest: IngestConfig{
			ChunkSize:    512,
			ChunkOverlap: 50,
			Workers:      2,
		},
	}
}
