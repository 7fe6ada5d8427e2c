package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

type Source struct {
	URL      string `yaml:"url"`
	Filename string `yaml:"filename"`
}

type DataConfig struct {
	Path    string   `yaml:"path" env:"MEDRAG_DATA_PATH"`
	Sources []Source `yaml:"sources,omitempty"`
}

type ChunkingConfig struct {
	Size    int `yaml:"size" env:"MEDRAG_CHUNK_SIZE"`
	Overlap int `yaml:"overlap" env:"MEDRAG_CHUNK_OVERLAP"`
}

type EmbeddingsConfig struct {
	Backend   string `yaml:"backend" env:"MEDRAG_EMBED_BACKEND"`
	Model     string `yaml:"model" env:"MEDRAG_EMBED_MODEL"`
	Dimension int    `yaml:"dimension" env:"MEDRAG_EMBED_DIMENSION"`
	BaseURL   string `yaml:"base_url,omitempty" env:"MEDRAG_EMBED_BASE_URL"`
	APIKey    string `yaml:"api_key,omitempty" env:"MEDRAG_EMBED_API_KEY"`
	BatchSize int    `yaml:"batch_size" env:"MEDRAG_EMBED_BATCH_SIZE"`
}

type IndexConfig struct {
	Path   string `yaml:"path" env:"MEDRAG_INDEX_PATH"`
	Format string `yaml:"format" env:"MEDRAG_INDEX_FORMAT"`
	Search string `yaml:"search" env:"MEDRAG_INDEX_SEARCH"`
	Trees  int    `yaml:"trees,omitempty" env:"MEDRAG_INDEX_TREES"`
}

type RetrievalConfig struct {
	K int `yaml:"k" env:"MEDRAG_TOP_K"`
}

type GenerationConfig struct {
	Temperature float64 `yaml:"temperature" env:"MEDRAG_TEMPERATURE"`
	MaxTokens   int     `yaml:"max_tokens" env:"MEDRAG_MAX_TOKENS"`
	Instruction string  `yaml:"instruction,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"MEDRAG_ADDR"`
}

// ProviderConfig is one generation provider entry. Type defaults to the
// entry name.
type ProviderConfig struct {
	Type    string `yaml:"type,omitempty"`
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

type Config struct {
	LogLevel        string                    `yaml:"log_level,omitempty" env:"MEDRAG_LOG_LEVEL"`
	Data            DataConfig                `yaml:"data"`
	Chunking        ChunkingConfig            `yaml:"chunking"`
	Embeddings      EmbeddingsConfig          `yaml:"embeddings"`
	Index           IndexConfig               `yaml:"index"`
	Retrieval       RetrievalConfig           `yaml:"retrieval"`
	Generation      GenerationConfig          `yaml:"generation"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
	DefaultProvider string                    `yaml:"default_provider,omitempty" env:"MEDRAG_PROVIDER"`
	Server          ServerConfig              `yaml:"server"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Data: DataConfig{
			Path: "data",
		},
		Chunking: ChunkingConfig{
			Size:    500,
			Overlap: 50,
		},
		Embeddings: EmbeddingsConfig{
			Backend:   BackendOllama,
			Model:     "all-minilm",
			Dimension: 384,
			BatchSize: 32,
		},
		Index: IndexConfig{
			Path:   filepath.Join("vectorstore", "db_faiss"),
			Format: FormatGob,
			Search: SearchExact,
			Trees:  10,
		},
		Retrieval: RetrievalConfig{
			K: 1,
		},
		Generation: GenerationConfig{
			Temperature: 0.3,
			MaxTokens:   256,
		},
		Providers:       make(map[string]ProviderConfig),
		DefaultProvider: ProviderGroq,
		Server: ServerConfig{
			Addr: ":5000",
		},
	}
}

// LoadConfig reads the scope's config file over the defaults, then applies
// MEDRAG_* environment overrides and validates the result.
func LoadConfig(scope Scope) (*Config, error) {
	cfg, err := ReadConfigFile(scope)
	if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfigFile reads the config file over the defaults without any
// environment overlay. A missing file yields the defaults.
func ReadConfigFile(scope Scope) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(scope.ConfigPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	return cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	if err := os.MkdirAll(scope.StatePath, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(scope.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return invalidInput("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return invalidInput("chunking.overlap must be in [0, %d), got %d", c.Chunking.Size, c.Chunking.Overlap)
	}
	if c.Retrieval.K <= 0 {
		return invalidInput("retrieval.k must be positive, got %d", c.Retrieval.K)
	}
	if c.Embeddings.Dimension <= 0 {
		return invalidInput("embeddings.dimension must be positive, got %d", c.Embeddings.Dimension)
	}
	if c.Embeddings.BatchSize <= 0 {
		return invalidInput("embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	if _, err := codecFor(c.Index.Format); err != nil {
		return fmt.Errorf("index.format: %w", err)
	}
	if c.Index.Search != SearchExact && c.Index.Search != SearchAnnoy {
		return invalidInput("index.search must be %s or %s, got %q", SearchExact, SearchAnnoy, c.Index.Search)
	}
	return nil
}

// EmbedderConfig returns the embedding settings with the API key taken
// from OPENAI_API_KEY when the openai backend has none configured.
func (c *Config) EmbedderConfig() EmbeddingsConfig {
	e := c.Embeddings
	if e.Backend == BackendOpenAI && e.APIKey == "" {
		e.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return e
}

// BuildOptions maps the index section onto BuildIndex options.
func (c *Config) BuildOptions(model, revision string) []IndexOption {
	return []IndexOption{
		WithModel(model),
		WithRevision(revision),
		WithFormat(c.Index.Format),
		WithSearch(c.Index.Search, c.Index.Trees),
	}
}

// LoadOptions leaves the format open so LoadIndex probes every codec.
func (c *Config) LoadOptions() []IndexOption {
	return []IndexOption{WithSearch(c.Index.Search, c.Index.Trees)}
}

// GeneratorConfig resolves a provider entry. An empty name selects the
// default provider. Built-in provider types work without an entry.
func (c *Config) GeneratorConfig(name string) (GeneratorConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	if name == "" {
		return GeneratorConfig{}, fmt.Errorf("%w: no default provider configured", ErrProviderUnavailable)
	}

	p, exists := c.Providers[name]
	if !exists {
		if _, known := providerDefaults[name]; !known {
			return GeneratorConfig{}, fmt.Errorf("%w: provider %q", ErrNotFound, name)
		}
	}

	kind := p.Type
	if kind == "" {
		kind = name
	}
	apiKey := p.APIKey
	if apiKey == "" {
		if d, ok := providerDefaults[kind]; ok {
			apiKey = os.Getenv(d.keyEnv)
		}
	}

	temperature := c.Generation.Temperature
	return GeneratorConfig{
		Provider:    kind,
		APIKey:      apiKey,
		BaseURL:     p.BaseURL,
		Model:       p.Model,
		Temperature: &temperature,
		MaxTokens:   c.Generation.MaxTokens,
	}, nil
}
