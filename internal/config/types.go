package config

// ProviderType identifies an LLM / embedding provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
)

// Config is the top-level askdocs configuration, corresponding to askdocs.yml.
type Config struct {
	Port    int    `yaml:"port" koanf:"port"`
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	AuthSecret string `yaml:"auth_secret" koanf:"auth_secret"`

	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Ingest    IngestConfig    `yaml:"ingest" koanf:"ingest"`
}

// RetrievalConfig holds vector search tuning knobs.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k" koanf:"top_k"`
	MinScore float64 `yaml:"min_score" koanf:"min_score"`
}

// IngestConfig holds document processing settings.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	Workers      int `yaml:"workers" koanf:"workers"`
}
