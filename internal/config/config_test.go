package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingProvider != ProviderOpenAI {
		t.Errorf("provider = %q, want openai default", cfg.EmbeddingProvider)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 200 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
	if cfg.Search.DefaultResults != 5 {
		t.Errorf("default_results = %d, want 5", cfg.Search.DefaultResults)
	}
	if len(cfg.Pricing) != 2 {
		t.Errorf("pricing tiers = %v", cfg.Pricing)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svassist.yml")
	content := `
embedding_provider: ollama
embedding_model: nomic-embed-text
chunking:
  size: 500
  overlap: 50
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingProvider != ProviderOllama {
		t.Errorf("provider = %q", cfg.EmbeddingProvider)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("chunking = %+v", cfg.Chunking)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Untouched keys keep their defaults.
	if cfg.TablesDir != "data/txt_tables" {
		t.Errorf("tables_dir = %q", cfg.TablesDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SVASSIST_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("SVASSIST_LOG_DIR", "/tmp/logs")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("embedding_model = %q", cfg.EmbeddingModel)
	}
	if cfg.LogDir != "/tmp/logs" {
		t.Errorf("log_dir = %q", cfg.LogDir)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svassist.yml")

	cfg := DefaultConfig()
	cfg.EmbeddingProvider = ProviderOllama
	cfg.EmbeddingModel = "nomic-embed-text"
	cfg.Server.Port = 9999
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.EmbeddingProvider != ProviderOllama || loaded.EmbeddingModel != "nomic-embed-text" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("port = %d", loaded.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, false},
		{"missing tables dir", func(c *Config) { c.TablesDir = "" }, false},
		{"bad provider", func(c *Config) { c.EmbeddingProvider = "carrier-pigeon" }, false},
		{"missing model", func(c *Config) { c.EmbeddingModel = "" }, false},
		{"zero chunk size", func(c *Config) { c.Chunking.Size = 0 }, false},
		{"overlap >= size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }, false},
		{"zero results", func(c *Config) { c.Search.DefaultResults = 0 }, false},
		{"unnamed tier", func(c *Config) { c.Pricing = []PricingTier{{InputPer1K: 1}} }, false},
		{"negative rate", func(c *Config) { c.Pricing = []PricingTier{{Name: "x", InputPer1K: -1}} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate should have failed")
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("APIKeyEnvVar(ollama) = %q, want empty", got)
	}
}
