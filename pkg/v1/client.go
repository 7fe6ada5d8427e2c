package v1

import (
	"context"
	"fmt"

	"github.com/4thel00z/medrag/internal"
)

// Client provides programmatic access to indexing and question answering.
type Client struct {
	indexSvc  *internal.IndexService
	answerSvc *internal.AnswerService
	scope     string
	provider  string
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	resolver := internal.NewScopeResolver()

	generatorFor := internal.DefaultGeneratorFactory
	if cfg.generate != nil {
		generate := cfg.generate
		generatorFor = func(context.Context, internal.GeneratorConfig) (internal.Generator, error) {
			return internal.GeneratorFunc(func(ctx context.Context, prompt string) (internal.RawOutput, error) {
				text, err := generate(ctx, prompt)
				if err != nil {
					return nil, err
				}
				return internal.TextOutput(text), nil
			}), nil
		}
	}

	return &Client{
		indexSvc:  internal.NewIndexService(resolver, cfg.logger),
		answerSvc: internal.NewAnswerService(resolver, generatorFor, cfg.logger),
		scope:     cfg.scope,
		provider:  cfg.provider,
	}, nil
}

// BuildIndex fetches, loads, embeds and persists the configured corpus.
func (c *Client) BuildIndex(ctx context.Context) (*IndexStats, error) {
	stats, err := c.indexSvc.Build(ctx, internal.BuildIndexInput{Scope: c.scope})
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return toStats(stats), nil
}

// Status describes the persisted index.
func (c *Client) Status(ctx context.Context) (*IndexStats, error) {
	stats, err := c.indexSvc.Status(ctx, c.scope)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return toStats(stats), nil
}

// Ask answers a question from the indexed corpus.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	answer, err := c.answerSvc.Ask(ctx, internal.AskInput{
		Question: question,
		Scope:    c.scope,
		Provider: c.provider,
	})
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return answer, nil
}

// Search returns the k passages closest to the query. A k of zero uses the
// configured retrieval.k.
func (c *Client) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	results, err := c.answerSvc.Search(ctx, internal.SearchInput{Query: query, Scope: c.scope, K: k})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			Source:  r.Chunk.Source,
			Page:    r.Chunk.Page,
			Section: r.Chunk.Section,
			Text:    r.Chunk.Text,
			Score:   r.Score,
		})
	}
	return out, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func toStats(s *internal.IndexStats) *IndexStats {
	return &IndexStats{
		Path:      s.Path,
		Format:    s.Format,
		Model:     s.Model,
		Dimension: s.Dimension,
		Revision:  s.Revision,
		Documents: s.Documents,
		Chunks:    s.Chunks,
		Sources:   s.Sources,
		Fetched:   s.Fetched,
		CreatedAt: s.CreatedAt,
	}
}
