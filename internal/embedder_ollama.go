package internal

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
)

var _ Embedder = (*OllamaEmbedder)(nil)

// OllamaEmbedder embeds through a local Ollama server. An empty base URL
// means http://localhost:11434/api.
type OllamaEmbedder struct {
	embed     chromem.EmbeddingFunc
	model     string
	dimension int
}

func NewOllamaEmbedder(cfg EmbeddingsConfig) (*OllamaEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: ollama embeddings need a model", ErrProviderUnavailable)
	}

	return &OllamaEmbedder{
		embed:     chromem.NewEmbeddingFuncOllama(cfg.Model, cfg.BaseURL),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama %s: %w", ErrProviderUnavailable, e.model, err)
	}
	if err := checkDimension(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

func (e *OllamaEmbedder) Model() string {
	return e.model
}
