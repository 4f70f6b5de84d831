package config

// EmbeddingProvider identifies the backend used to embed memory
// content for semantic search.
type EmbeddingProvider string

const (
	EmbeddingOpenAI EmbeddingProvider = "openai"
	EmbeddingOllama EmbeddingProvider = "ollama"
	EmbeddingLocal  EmbeddingProvider = "local"
)

// Config is the top-level aethero configuration, corresponding to
// .aethero.yml.
type Config struct {
	Port              int               `yaml:"port" koanf:"port"`
	DataDir           string            `yaml:"data_dir" koanf:"data_dir"`
	AllowAllOrigins   bool              `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	EmbeddingProvider EmbeddingProvider `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string            `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaURL         string            `yaml:"ollama_url" koanf:"ollama_url"`
	Audit             AuditConfig       `yaml:"audit" koanf:"audit"`
	Memory            MemoryConfig      `yaml:"memory" koanf:"memory"`
}

// AuditConfig holds audit trail settings.
type AuditConfig struct {
	CSVPath       string `yaml:"csv_path" koanf:"csv_path"`
	RetentionDays int    `yaml:"retention_days" koanf:"retention_days"`
}

// MemoryConfig holds memory store settings.
type MemoryConfig struct {
	SearchLimit         int     `yaml:"search_limit" koanf:"search_limit"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" koanf:"similarity_threshold"`
}
