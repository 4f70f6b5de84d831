// Package config loads and validates the .aethero.yml configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the conventional config file location.
const DefaultPath = ".aethero.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:              8000,
		DataDir:           ".aethero",
		EmbeddingProvider: EmbeddingLocal,
		Audit: AuditConfig{
			CSVPath:       "aetheroos_audit_trail.csv",
			RetentionDays: 0,
		},
		Memory: MemoryConfig{
			SearchLimit:         10,
			SimilarityThreshold: 0.7,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (AETHERO_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// AETHERO_PORT -> port, AETHERO_AUDIT.CSV_PATH is not expressible;
	// nested keys use underscores: AETHERO_MEMORY_SEARCH_LIMIT.
	if err := k.Load(env.Provider("AETHERO_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "AETHERO_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized embedding provider values.
var validProviders = map[EmbeddingProvider]bool{
	EmbeddingOpenAI: true,
	EmbeddingOllama: true,
	EmbeddingLocal:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, ollama, local", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider == EmbeddingOllama && c.OllamaURL == "" {
		return fmt.Errorf("ollama_url is required when embedding_provider is ollama")
	}
	if c.Memory.SearchLimit < 0 {
		return fmt.Errorf("memory.search_limit must be non-negative")
	}
	if c.Memory.SimilarityThreshold < 0 || c.Memory.SimilarityThreshold > 1 {
		return fmt.Errorf("memory.similarity_threshold must be between 0 and 1")
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must be non-negative")
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given embedding provider.
func APIKeyEnvVar(provider EmbeddingProvider) string {
	if provider == EmbeddingOpenAI {
		return "OPENAI_API_KEY"
	}
	return ""
}
