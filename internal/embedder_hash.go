package internal

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

var _ Embedder = (*HashEmbedder)(nil)

// HashEmbedder is a deterministic bag-of-words embedder using the hashing
// trick. It needs no model and no network, which makes it the backend of
// choice for tests and offline demos.
type HashEmbedder struct {
	dimension int
}

func NewHashEmbedder(dimension int) (*HashEmbedder, error) {
	if dimension <= 0 {
		return nil, invalidInput("embedding dimension must be positive, got %d", dimension)
	}
	return &HashEmbedder{dimension: dimension}, nil
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dimension)
	for _, token := range tokenize(text) {
		h := xxhash.Sum64String(token)
		sign := float32(1)
		if h>>63 == 1 {
			sign = -1
		}
		vec[h%uint64(e.dimension)] += sign
	}

	return l2Normalize(vec), nil
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, e.Embed)
}

func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

func (e *HashEmbedder) Model() string {
	return fmt.Sprintf("hash-%d", e.dimension)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
