package cmd

import (
	"fmt"
	"os"

	"github.com/sportzvillage/svassist/internal/chatlog"
	"github.com/sportzvillage/svassist/internal/config"
	"github.com/sportzvillage/svassist/internal/docs"
	"github.com/sportzvillage/svassist/internal/embeddings"
	"github.com/sportzvillage/svassist/internal/indexer"
	"github.com/sportzvillage/svassist/internal/logging"
	"github.com/sportzvillage/svassist/internal/pricing"
	"github.com/sportzvillage/svassist/internal/search"
	"github.com/sportzvillage/svassist/internal/textdb"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `svassist init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces the
// human-readable development encoder regardless of config.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	mode := cfg.LogMode
	if verbose {
		mode = "dev"
	}
	return logging.New(mode)
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is required for OpenAI embeddings",
				config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		return embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}
}

// pricingTiers converts configured pricing into analytics tiers.
func pricingTiers(cfg *config.Config) []pricing.Tier {
	tiers := make([]pricing.Tier, 0, len(cfg.Pricing))
	for _, t := range cfg.Pricing {
		tiers = append(tiers, pricing.Tier{
			Name:        t.Name,
			InputPer1K:  t.InputPer1K,
			OutputPer1K: t.OutputPer1K,
		})
	}
	if len(tiers) == 0 {
		tiers = pricing.DefaultTiers
	}
	return tiers
}

// stack bundles the wired components most commands need.
type stack struct {
	cfg       *config.Config
	log       *logging.Logger
	store     *vectordb.ChromemStore
	tables    *textdb.DB
	ix        *indexer.Indexer
	engine    *search.Engine
	refresher *indexer.Refresher
	docs      *docs.Manager
	chatLog   *chatlog.Logger
	tiers     []pricing.Tier
}

// buildStack wires config, logging, embeddings, the vector store and
// everything that hangs off them. Shared by refresh, search, serve,
// mcp and analytics.
func buildStack() (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := vectordb.NewChromemStore(cfg.DataDir, embedder, log)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}

	tables := textdb.Open(cfg.TablesDir, log)
	ix := indexer.New(store, cfg.Chunking.Size, cfg.Chunking.Overlap, log)
	engine := search.New(store, log)

	chatLog, err := chatlog.New(cfg.LogDir, log)
	if err != nil {
		return nil, fmt.Errorf("opening chat log: %w", err)
	}

	return &stack{
		cfg:       cfg,
		log:       log,
		store:     store,
		tables:    tables,
		ix:        ix,
		engine:    engine,
		refresher: indexer.NewRefresher(store, ix, tables, log),
		docs:      docs.NewManager(cfg.DocsDir, ix, engine, log),
		chatLog:   chatLog,
		tiers:     pricingTiers(cfg),
	}, nil
}
