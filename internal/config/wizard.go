package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .aethero.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to aethero! Let's configure the cabinet.")
	fmt.Println()

	defaults := DefaultConfig()

	// 1. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(defaults.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port selection: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (SQLite database and vector index)",
		Default: defaults.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Embedding provider.
	embedPrompt := promptui.Select{
		Label: "Select embedding provider for semantic memory search",
		Items: []string{
			"local  - deterministic, no API key needed",
			"openai - text-embedding-3-small (requires OPENAI_API_KEY)",
			"ollama - local Ollama server",
		},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	providers := []EmbeddingProvider{EmbeddingLocal, EmbeddingOpenAI, EmbeddingOllama}
	provider := providers[embedIdx]

	cfg := &Config{
		Port:              port,
		DataDir:           dataDir,
		EmbeddingProvider: provider,
		Audit:             defaults.Audit,
		Memory:            defaults.Memory,
	}

	if provider == EmbeddingOllama {
		ollamaPrompt := promptui.Prompt{
			Label:   "Ollama URL",
			Default: "http://localhost:11434",
		}
		cfg.OllamaURL, err = ollamaPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("ollama url: %w", err)
		}
	}

	if envVar := APIKeyEnvVar(provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running aethero server.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
