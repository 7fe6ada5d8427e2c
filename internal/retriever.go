package internal

import (
	"context"
	"fmt"
)

// ChunkRetriever is what the pipeline needs from retrieval.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, question string) ([]SearchResult, error)
}

var _ ChunkRetriever = (*Retriever)(nil)

// Retriever embeds a question and returns the top k chunks of an index.
type Retriever struct {
	embedder Embedder
	index    *Index
	k        int
}

func NewRetriever(embedder Embedder, index *Index, k int) (*Retriever, error) {
	if k <= 0 {
		return nil, invalidInput("k must be positive, got %d", k)
	}
	return &Retriever{embedder: embedder, index: index, k: k}, nil
}

func (r *Retriever) Retrieve(ctx context.Context, question string) ([]SearchResult, error) {
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := r.index.Search(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// RetrieverFunc adapts a plain function to ChunkRetriever.
type RetrieverFunc func(ctx context.Context, question string) ([]SearchResult, error)

func (f RetrieverFunc) Retrieve(ctx context.Context, question string) ([]SearchResult, error) {
	return f(ctx, question)
}
