package internal

import (
	"context"
	"fmt"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

// Generation provider types.
const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama-3.1-8b-instant"
)

// providerDefaults holds the model and key variable used when a provider
// entry leaves them empty.
var providerDefaults = map[string]struct {
	model  string
	keyEnv string
}{
	ProviderGroq:       {DefaultGroqModel, "GROQ_API_KEY"},
	ProviderOpenAI:     {"gpt-4o-mini", "OPENAI_API_KEY"},
	ProviderAnthropic:  {"claude-3-5-haiku-latest", "ANTHROPIC_API_KEY"},
	ProviderOpenRouter: {"meta-llama/llama-3.1-8b-instruct", "OPENROUTER_API_KEY"},
}

// KnownProviders lists the provider types NewGenerator accepts.
func KnownProviders() []string {
	return []string{ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter}
}

type GeneratorConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64 // nil leaves the provider default
	MaxTokens   int
}

var _ Generator = (*FantasyGenerator)(nil)

// FantasyGenerator completes prompts through a fantasy language model.
type FantasyGenerator struct {
	model       fantasy.LanguageModel
	name        string
	temperature *float64
	maxTokens   int64
}

func NewGenerator(ctx context.Context, cfg GeneratorConfig) (*FantasyGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: no api key for provider %q", ErrProviderUnavailable, cfg.Provider)
	}

	var provider fantasy.Provider
	var err error

	switch cfg.Provider {
	case ProviderGroq, ProviderOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" && cfg.Provider == ProviderGroq {
			baseURL = GroqBaseURL
		}
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		provider, err = openai.New(opts...)

	case ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case ProviderOpenRouter:
		provider, err = openrouter.New(openrouter.WithAPIKey(cfg.APIKey))

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrProviderUnavailable, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create provider: %w", ErrProviderUnavailable, err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = providerDefaults[cfg.Provider].model
	}

	model, err := provider.LanguageModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("%w: get language model: %w", ErrProviderUnavailable, err)
	}

	return &FantasyGenerator{
		model:       model,
		name:        cfg.Provider,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
	}, nil
}

func (g *FantasyGenerator) Name() string { return g.name }

func (g *FantasyGenerator) Generate(ctx context.Context, prompt string) (RawOutput, error) {
	call := fantasy.AgentCall{Prompt: prompt}
	if g.temperature != nil {
		temperature := *g.temperature
		call.Temperature = &temperature
	}
	if g.maxTokens > 0 {
		call.MaxOutputTokens = &g.maxTokens
	}

	result, err := fantasy.NewAgent(g.model).Generate(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return TextOutput(result.Response.Content.Text()), nil
}
