package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to svassist! Let's configure your deployment.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.EmbeddingProvider = EmbeddingProvider(providerStr)

	switch cfg.EmbeddingProvider {
	case ProviderOpenAI:
		modelPrompt := promptui.Select{
			Label: "Select embedding model",
			Items: []string{"text-embedding-3-small", "text-embedding-3-large"},
		}
		if _, cfg.EmbeddingModel, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("model selection: %w", err)
		}
		if os.Getenv(APIKeyEnvVar(ProviderOpenAI)) == "" {
			fmt.Printf("Note: %s is not set; set it before running refresh or search.\n", APIKeyEnvVar(ProviderOpenAI))
		}
	case ProviderOllama:
		cfg.EmbeddingModel = "nomic-embed-text"
		urlPrompt := promptui.Prompt{
			Label:   "Ollama base URL",
			Default: cfg.OllamaURL,
		}
		if cfg.OllamaURL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("ollama url: %w", err)
		}
	}

	// 2. Data locations.
	dataPrompt := promptui.Prompt{
		Label:   "Directory for the vector collections",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	tablesPrompt := promptui.Prompt{
		Label:   "Directory holding the text table files",
		Default: cfg.TablesDir,
	}
	if cfg.TablesDir, err = tablesPrompt.Run(); err != nil {
		return nil, fmt.Errorf("tables dir: %w", err)
	}

	logPrompt := promptui.Prompt{
		Label:   "Directory for chat logs",
		Default: cfg.LogDir,
	}
	if cfg.LogDir, err = logPrompt.Run(); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration written to %s\n", path)
	return cfg, nil
}
