package config

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

const (
	ProviderOpenAI EmbeddingProvider = "openai"
	ProviderOllama EmbeddingProvider = "ollama"
)

// Config is the top-level svassist configuration, corresponding to
// .svassist.yml.
type Config struct {
	DataDir           string            `yaml:"data_dir" koanf:"data_dir"`
	TablesDir         string            `yaml:"tables_dir" koanf:"tables_dir"`
	DocsDir           string            `yaml:"docs_dir" koanf:"docs_dir"`
	LogDir            string            `yaml:"log_dir" koanf:"log_dir"`
	LogMode           string            `yaml:"log_mode" koanf:"log_mode"`
	EmbeddingProvider EmbeddingProvider `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string            `yaml:"embedding_model" koanf:"embedding_model"`
	OllamaURL         string            `yaml:"ollama_url" koanf:"ollama_url"`
	Chunking          ChunkingConfig    `yaml:"chunking" koanf:"chunking"`
	Search            SearchConfig      `yaml:"search" koanf:"search"`
	Pricing           []PricingTier     `yaml:"pricing" koanf:"pricing"`
	Server            ServerConfig      `yaml:"server" koanf:"server"`
}

// ChunkingConfig controls how free-text documents are windowed before
// indexing.
type ChunkingConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// SearchConfig holds retrieval defaults.
type SearchConfig struct {
	DefaultResults int `yaml:"default_results" koanf:"default_results"`
}

// PricingTier names a token pricing tier used for cost estimates in the
// chat analytics. Rates are USD per 1K tokens.
type PricingTier struct {
	Name        string  `yaml:"name" koanf:"name"`
	InputPer1K  float64 `yaml:"input_per_1k" koanf:"input_per_1k"`
	OutputPer1K float64 `yaml:"output_per_1k" koanf:"output_per_1k"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
