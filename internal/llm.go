package internal

import "context"

// Embedder maps text to fixed-dimension vectors. The same instance must be
// used at index-build time and query time.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// Generator turns a fully assembled prompt into raw model output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (RawOutput, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (RawOutput, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (RawOutput, error) {
	return f(ctx, prompt)
}
