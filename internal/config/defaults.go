package config

// DefaultPricing covers the two tiers the analytics report estimates
// costs for out of the box. Rates are USD per 1K tokens and can be
// replaced wholesale from the config file.
var DefaultPricing = []PricingTier{
	{Name: "gpt-4", InputPer1K: 0.03, OutputPer1K: 0.06},
	{Name: "gpt-3.5-turbo", InputPer1K: 0.0015, OutputPer1K: 0.002},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           "data/chromadb",
		TablesDir:         "data/txt_tables",
		DocsDir:           "data/sv_docs",
		LogDir:            "data/chat_logs",
		LogMode:           "dev",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		OllamaURL:         "http://localhost:11434",
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Search: SearchConfig{
			DefaultResults: 5,
		},
		Pricing: DefaultPricing,
		Server: ServerConfig{
			Port:     8080,
			AllowAll: false,
		},
	}
}
