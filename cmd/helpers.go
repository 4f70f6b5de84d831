package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/audit"
	"github.com/aetheroos/aethero/internal/cognitive"
	"github.com/aetheroos/aethero/internal/config"
	"github.com/aetheroos/aethero/internal/coordinator"
	"github.com/aetheroos/aethero/internal/db"
	"github.com/aetheroos/aethero/internal/embeddings"
	"github.com/aetheroos/aethero/internal/memory"
	"github.com/aetheroos/aethero/internal/ministers"
	"github.com/aetheroos/aethero/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly
// error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `aethero init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on
// config. The local embedder needs no credentials and is the default.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.EmbeddingOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.EmbeddingOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		model := embeddings.OpenAIModel(cfg.EmbeddingModel)
		if model == "" {
			model = embeddings.ModelTextEmbedding3Small
		}
		return embeddings.NewOpenAIEmbedder(apiKey, model), nil
	case config.EmbeddingOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, cfg.OllamaURL), nil
	default:
		return embeddings.NewLocalEmbedder(), nil
	}
}

// cabinet bundles the wired runtime pieces the commands share.
type cabinet struct {
	db     *db.DB
	memory *memory.Store
	audit  *audit.Store
	vector *vectordb.ChromemStore
	coord  *coordinator.Coordinator
}

// vectorDir returns the on-disk location of the persisted vector index.
func vectorDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "vectordb")
}

// openCabinet wires the stores, dispatcher, and coordinator from
// config. The vector index is loaded best-effort; a missing index only
// disables semantic search.
func openCabinet(ctx context.Context, cfg *config.Config, broadcaster coordinator.Broadcaster) (*cabinet, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "aethero.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	vector, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	if err := vector.Load(ctx, vectorDir(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load vector index from %s: %v\n", vectorDir(cfg), err)
	}

	mem := memory.NewStore(database, vector)
	auditStore := audit.NewStore(database)

	dispatcher := cognitive.NewDispatcher(
		ministers.NewPrimus(),
		ministers.NewLucius(),
		ministers.NewArchivus(mem),
		ministers.NewFrontinus(),
	)

	coord := coordinator.New(coordinator.Options{
		Dispatcher:  dispatcher,
		Memory:      mem,
		Audit:       auditStore,
		Broadcaster: broadcaster,
		Bridges: []coordinator.Bridge{
			coordinator.NewBridge("memory", func(ctx context.Context) error {
				return database.Ping()
			}, func(ctx context.Context) error {
				return database.Ping()
			}, nil),
			coordinator.NewBridge("parser", nil, nil, nil),
			coordinator.NewBridge("cognitive", func(ctx context.Context) error {
				for _, m := range asl.Ministers {
					if _, ok := dispatcher.Handler(m); !ok {
						return fmt.Errorf("no handler for %s", m)
					}
				}
				return nil
			}, nil, nil),
			coordinator.NewBridge("server", nil, nil, nil),
			coordinator.NewBridge("interface", nil, nil, nil),
		},
	})

	return &cabinet{
		db:     database,
		memory: mem,
		audit:  auditStore,
		vector: vector,
		coord:  coord,
	}, nil
}

// close persists the vector index and releases the database.
func (c *cabinet) close(ctx context.Context, cfg *config.Config) {
	if err := os.MkdirAll(vectorDir(cfg), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: creating vector dir: %v\n", err)
	}
	if err := c.vector.Persist(ctx, vectorDir(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: persisting vector index: %v\n", err)
	}
	c.db.Close()
}
