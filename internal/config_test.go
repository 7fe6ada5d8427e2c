package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempScope(t *testing.T) Scope {
	t.Helper()
	tmpDir := t.TempDir()
	return Scope{
		Type:      ScopeProject,
		Path:      tmpDir,
		StatePath: filepath.Join(tmpDir, StateDirName),
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("chunking = %d/%d, want 500/50", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Retrieval.K != 1 {
		t.Errorf("k = %d, want 1", cfg.Retrieval.K)
	}
	if cfg.Embeddings.Backend != BackendOllama {
		t.Errorf("expected backend %q, got %q", BackendOllama, cfg.Embeddings.Backend)
	}
	if cfg.Embeddings.Dimension != 384 {
		t.Errorf("expected dimension 384, got %d", cfg.Embeddings.Dimension)
	}
	if cfg.Generation.Temperature != 0.3 || cfg.Generation.MaxTokens != 256 {
		t.Errorf("generation = %v/%d, want 0.3/256", cfg.Generation.Temperature, cfg.Generation.MaxTokens)
	}
	if cfg.DefaultProvider != ProviderGroq {
		t.Errorf("default provider = %q, want %q", cfg.DefaultProvider, ProviderGroq)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Providers == nil {
		t.Error("expected providers map to be initialized")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	scope := tempScope(t)

	cfg := DefaultConfig()
	cfg.DefaultProvider = "work"
	cfg.Chunking.Size = 300
	cfg.Index.Format = FormatSQLite
	cfg.Data.Sources = []Source{{URL: "https://example.com/a.pdf", Filename: "a.pdf"}}
	cfg.Providers["work"] = ProviderConfig{
		Type:   ProviderOpenAI,
		APIKey: "sk-test",
		Model:  "gpt-4",
	}

	if err := SaveConfig(scope, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.DefaultProvider != "work" {
		t.Errorf("default provider = %q, want %q", loaded.DefaultProvider, "work")
	}
	if loaded.Chunking.Size != 300 {
		t.Errorf("chunk size = %d, want 300", loaded.Chunking.Size)
	}
	if loaded.Index.Format != FormatSQLite {
		t.Errorf("format = %q", loaded.Index.Format)
	}
	if len(loaded.Data.Sources) != 1 || loaded.Data.Sources[0].Filename != "a.pdf" {
		t.Errorf("sources = %+v", loaded.Data.Sources)
	}
	if p, ok := loaded.Providers["work"]; !ok {
		t.Error("expected provider 'work' to exist")
	} else if p.APIKey != "sk-test" || p.Model != "gpt-4" || p.Type != ProviderOpenAI {
		t.Errorf("provider = %+v", p)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(tempScope(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Embeddings.Backend != BackendOllama {
		t.Errorf("expected default backend, got %q", cfg.Embeddings.Backend)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	scope := tempScope(t)
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(scope.ConfigPath(), []byte("{{invalid yaml:::"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadConfig(scope); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	scope := tempScope(t)
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(scope.ConfigPath(), []byte("embeddings:\n  backend: hash\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(scope)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Embeddings.Backend != BackendHash {
		t.Errorf("backend = %q, want %q", cfg.Embeddings.Backend, BackendHash)
	}
	if cfg.Embeddings.Dimension != 384 {
		t.Errorf("dimension = %d, want default 384", cfg.Embeddings.Dimension)
	}
	if cfg.Chunking.Size != 500 {
		t.Errorf("chunk size = %d, want default 500", cfg.Chunking.Size)
	}
}

func TestLoadConfigEnvOverlay(t *testing.T) {
	t.Setenv("MEDRAG_CHUNK_SIZE", "200")
	t.Setenv("MEDRAG_TOP_K", "3")
	t.Setenv("MEDRAG_INDEX_PATH", "/tmp/idx")
	t.Setenv("MEDRAG_PROVIDER", ProviderAnthropic)

	cfg, err := LoadConfig(tempScope(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Chunking.Size != 200 {
		t.Errorf("chunk size = %d, want 200", cfg.Chunking.Size)
	}
	if cfg.Retrieval.K != 3 {
		t.Errorf("k = %d, want 3", cfg.Retrieval.K)
	}
	if cfg.Index.Path != "/tmp/idx" {
		t.Errorf("index path = %q", cfg.Index.Path)
	}
	if cfg.DefaultProvider != ProviderAnthropic {
		t.Errorf("provider = %q", cfg.DefaultProvider)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("MEDRAG_TOP_K", "0")

	_, err := LoadConfig(tempScope(t))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.Chunking.Size = 0 }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"overlap not below size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }},
		{"zero k", func(c *Config) { c.Retrieval.K = 0 }},
		{"zero dimension", func(c *Config) { c.Embeddings.Dimension = 0 }},
		{"zero batch", func(c *Config) { c.Embeddings.BatchSize = 0 }},
		{"bad format", func(c *Config) { c.Index.Format = "faiss" }},
		{"bad search", func(c *Config) { c.Index.Search = "hnsw" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestConfigGeneratorConfig(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-env")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := DefaultConfig()
	cfg.Providers["work"] = ProviderConfig{Type: ProviderOpenAI, APIKey: "sk-file", Model: "gpt-4"}

	gen, err := cfg.GeneratorConfig("")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if gen.Provider != ProviderGroq || gen.APIKey != "gsk-env" {
		t.Errorf("default provider = %+v", gen)
	}
	if gen.Temperature == nil || *gen.Temperature != 0.3 || gen.MaxTokens != 256 {
		t.Errorf("generation settings not carried: %+v", gen)
	}

	cfg.Generation.Temperature = 0
	gen, err = cfg.GeneratorConfig("")
	if err != nil {
		t.Fatalf("zero temperature: %v", err)
	}
	if gen.Temperature == nil || *gen.Temperature != 0 {
		t.Errorf("zero temperature must be carried explicitly, got %v", gen.Temperature)
	}

	gen, err = cfg.GeneratorConfig("work")
	if err != nil {
		t.Fatalf("work: %v", err)
	}
	if gen.Provider != ProviderOpenAI || gen.APIKey != "sk-file" || gen.Model != "gpt-4" {
		t.Errorf("work provider = %+v", gen)
	}

	if _, err := cfg.GeneratorConfig("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConfigEmbedderConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-embed")

	cfg := DefaultConfig()
	if got := cfg.EmbedderConfig().APIKey; got != "" {
		t.Errorf("ollama backend should not pick up a key, got %q", got)
	}

	cfg.Embeddings.Backend = BackendOpenAI
	if got := cfg.EmbedderConfig().APIKey; got != "sk-embed" {
		t.Errorf("api key = %q, want sk-embed", got)
	}
}
