package internal

import (
	"context"
	"fmt"
)

// Embedding backends accepted in embeddings.backend.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendHash   = "hash"
)

func NewEmbedder(cfg EmbeddingsConfig) (Embedder, error) {
	if cfg.Dimension <= 0 {
		return nil, invalidInput("embedding dimension must be positive, got %d", cfg.Dimension)
	}

	switch cfg.Backend {
	case BackendOllama:
		return NewOllamaEmbedder(cfg)
	case BackendOpenAI:
		return NewOpenAIEmbedder(cfg)
	case BackendHash:
		return NewHashEmbedder(cfg.Dimension)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding backend %q", ErrProviderUnavailable, cfg.Backend)
	}
}

// embedEach runs a single-text embed function over texts in order.
func embedEach(ctx context.Context, texts []string, embed func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		results[i] = vec
	}
	return results, nil
}

func checkDimension(vec []float32, dimension int) error {
	if len(vec) != dimension {
		return dimensionMismatch(dimension, len(vec))
	}
	return nil
}
