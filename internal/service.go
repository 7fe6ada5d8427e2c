package internal

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// GeneratorFactory builds a Generator from resolved provider settings.
type GeneratorFactory func(ctx context.Context, cfg GeneratorConfig) (Generator, error)

func DefaultGeneratorFactory(ctx context.Context, cfg GeneratorConfig) (Generator, error) {
	return NewGenerator(ctx, cfg)
}

// IndexService runs the offline indexing job and reports on its output.
type IndexService struct {
	resolver *ScopeResolver
	logger   *log.Logger
	fetchOpt []FetcherOption
}

func NewIndexService(resolver *ScopeResolver, logger *log.Logger, fetchOpts ...FetcherOption) *IndexService {
	if logger == nil {
		logger = discardLogger()
	}
	return &IndexService{resolver: resolver, logger: logger, fetchOpt: fetchOpts}
}

type BuildIndexInput struct {
	Scope   string
	DataDir string // overrides data.path, relative to the working directory
	Format  string // overrides index.format
}

type IndexStats struct {
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`
	Revision  string    `json:"revision,omitempty"`
	Documents int       `json:"documents"`
	Chunks    int       `json:"chunks"`
	Sources   []string  `json:"sources"`
	Fetched   []string  `json:"fetched,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Build fetches missing sources, then loads, splits, embeds and saves the
// whole corpus. Every run replaces the previous index.
func (s *IndexService) Build(ctx context.Context, in BuildIndexInput) (*IndexStats, error) {
	scope := s.resolver.Resolve(in.Scope)
	cfg, err := LoadConfig(scope)
	if err != nil {
		return nil, err
	}
	if in.Format != "" {
		if _, err := codecFor(in.Format); err != nil {
			return nil, err
		}
		cfg.Index.Format = in.Format
	}

	dataDir := scope.Abs(cfg.Data.Path)
	if in.DataDir != "" {
		if dataDir, err = filepath.Abs(in.DataDir); err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
	}
	indexPath := scope.Abs(cfg.Index.Path)

	opts := append([]FetcherOption{WithFetchLogger(s.logger)}, s.fetchOpt...)
	fetched, err := NewFetcher(dataDir, opts...).Ensure(ctx, cfg.Data.Sources)
	if err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}

	docs, err := LoadDocuments(dataDir)
	if err != nil {
		return nil, err
	}
	s.logger.Info("loaded documents", "dir", dataDir, "documents", len(docs))

	chunks, err := Split(docs, cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("split documents: %w", err)
	}
	if len(chunks) == 0 {
		return nil, invalidInput("no text found in %s", dataDir)
	}

	embedder, err := NewEmbedder(cfg.EmbedderConfig())
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vectors, err := s.embedChunks(ctx, embedder, chunks, cfg.Embeddings.BatchSize)
	if err != nil {
		return nil, err
	}

	revision, err := CorpusRevision(dataDir)
	if err != nil {
		s.logger.Warn("corpus revision unavailable", "err", err)
	}

	index, err := BuildIndex(chunks, vectors, cfg.BuildOptions(embedder.Model(), revision)...)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := index.Save(ctx, indexPath); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	s.logger.Info("index saved", "path", indexPath, "format", index.Format(), "chunks", index.Len())

	stats := indexStats(indexPath, index)
	stats.Documents = len(docs)
	stats.Fetched = fetched
	return stats, nil
}

// Paths returns the resolved data directory and index location.
func (s *IndexService) Paths(scopeHint string) (dataDir, indexPath string, err error) {
	scope := s.resolver.Resolve(scopeHint)
	cfg, err := LoadConfig(scope)
	if err != nil {
		return "", "", err
	}
	return scope.Abs(cfg.Data.Path), scope.Abs(cfg.Index.Path), nil
}

func (s *IndexService) embedChunks(ctx context.Context, embedder Embedder, chunks []Chunk, batchSize int) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors", start, end, len(batch))
		}
		vectors = append(vectors, batch...)

		s.logger.Debug("embedded batch", "done", end, "total", len(chunks))
	}
	return vectors, nil
}

// Status describes the persisted index without loading an embedder.
func (s *IndexService) Status(ctx context.Context, scopeHint string) (*IndexStats, error) {
	scope := s.resolver.Resolve(scopeHint)
	cfg, err := LoadConfig(scope)
	if err != nil {
		return nil, err
	}

	indexPath := scope.Abs(cfg.Index.Path)
	index, err := LoadIndex(ctx, indexPath, nil, cfg.LoadOptions()...)
	if err != nil {
		return nil, err
	}
	return indexStats(indexPath, index), nil
}

func indexStats(path string, index *Index) *IndexStats {
	type docKey struct {
		source, section string
		page            int
	}
	docs := make(map[docKey]bool)
	for _, c := range index.Chunks() {
		docs[docKey{c.Source, c.Section, c.Page}] = true
	}

	return &IndexStats{
		Path:      path,
		Format:    index.Format(),
		Model:     index.Model(),
		Dimension: index.Dimension(),
		Revision:  index.Revision(),
		Documents: len(docs),
		Chunks:    index.Len(),
		Sources:   index.Sources(),
		CreatedAt: index.CreatedAt(),
	}
}

// Answerer is the question answering surface shared by the CLI, the web
// chat and the terminal chat.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

var _ Answerer = (*Pipeline)(nil)

// AnswerFunc adapts a plain function to Answerer.
type AnswerFunc func(ctx context.Context, question string) (string, error)

func (f AnswerFunc) Answer(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

type AskInput struct {
	Question string
	Scope    string
	Provider string
	K        int // overrides retrieval.k when positive
}

type SearchInput struct {
	Query string
	Scope string
	K     int
}

// AnswerService assembles pipelines from config and caches each one after
// its first successful assembly. Failed assemblies are retried on the next
// request.
type AnswerService struct {
	resolver     *ScopeResolver
	generatorFor GeneratorFactory
	logger       *log.Logger

	mu        sync.Mutex
	pipelines map[string]*Pipeline
}

func NewAnswerService(resolver *ScopeResolver, generatorFor GeneratorFactory, logger *log.Logger) *AnswerService {
	if generatorFor == nil {
		generatorFor = DefaultGeneratorFactory
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &AnswerService{
		resolver:     resolver,
		generatorFor: generatorFor,
		logger:       logger,
		pipelines:    make(map[string]*Pipeline),
	}
}

func (s *AnswerService) Ask(ctx context.Context, in AskInput) (string, error) {
	question, err := ValidateQuestion(in.Question)
	if err != nil {
		return "", err
	}

	pipeline, err := s.Pipeline(ctx, in)
	if err != nil {
		return "", err
	}
	return pipeline.Answer(ctx, question)
}

// Answerer binds the service to fixed settings. The question text of the
// returned Answerer's calls replaces in.Question.
func (s *AnswerService) Answerer(in AskInput) Answerer {
	return AnswerFunc(func(ctx context.Context, question string) (string, error) {
		in.Question = question
		return s.Ask(ctx, in)
	})
}

// Pipeline returns the cached pipeline for the input's scope, provider and
// k, assembling it on first use.
func (s *AnswerService) Pipeline(ctx context.Context, in AskInput) (*Pipeline, error) {
	scope := s.resolver.Resolve(in.Scope)
	key := fmt.Sprintf("%s|%s|%d", scope.ConfigPath(), in.Provider, in.K)

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pipelines[key]; ok {
		return p, nil
	}

	cfg, err := LoadConfig(scope)
	if err != nil {
		return nil, err
	}

	k := cfg.Retrieval.K
	if in.K > 0 {
		k = in.K
	}

	p, err := CreatePipeline(ctx, PipelineDeps{
		Embedder: func(ctx context.Context) (Embedder, error) {
			return NewEmbedder(cfg.EmbedderConfig())
		},
		Index: func(ctx context.Context, e Embedder) (*Index, error) {
			return LoadIndex(ctx, scope.Abs(cfg.Index.Path), e, cfg.LoadOptions()...)
		},
		Generator: func(ctx context.Context) (Generator, error) {
			gc, err := cfg.GeneratorConfig(in.Provider)
			if err != nil {
				return nil, err
			}
			return s.generatorFor(ctx, gc)
		},
		K:      k,
		Prompt: NewPromptTemplate(cfg.Generation.Instruction),
		Logger: s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.pipelines[key] = p
	return p, nil
}

// Config loads the effective config of a scope.
func (s *AnswerService) Config(scopeHint string) (*Config, error) {
	return LoadConfig(s.resolver.Resolve(scopeHint))
}

// Search runs retrieval only.
func (s *AnswerService) Search(ctx context.Context, in SearchInput) ([]SearchResult, error) {
	query, err := ValidateQuestion(in.Query)
	if err != nil {
		return nil, err
	}

	scope := s.resolver.Resolve(in.Scope)
	cfg, err := LoadConfig(scope)
	if err != nil {
		return nil, err
	}

	k := cfg.Retrieval.K
	if in.K > 0 {
		k = in.K
	}

	embedder, err := NewEmbedder(cfg.EmbedderConfig())
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	index, err := LoadIndex(ctx, scope.Abs(cfg.Index.Path), embedder, cfg.LoadOptions()...)
	if err != nil {
		return nil, err
	}
	retriever, err := NewRetriever(embedder, index, k)
	if err != nil {
		return nil, err
	}
	return retriever.Retrieve(ctx, query)
}

type ProviderEntry struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Default bool   `json:"default"`
}

// ProviderService manages generation provider configuration.
type ProviderService struct {
	resolver     *ScopeResolver
	generatorFor GeneratorFactory
}

func NewProviderService(resolver *ScopeResolver, generatorFor GeneratorFactory) *ProviderService {
	if generatorFor == nil {
		generatorFor = DefaultGeneratorFactory
	}
	return &ProviderService{resolver: resolver, generatorFor: generatorFor}
}

// List returns configured providers sorted by name. The default provider is
// included even when it is a built-in type without an entry.
func (s *ProviderService) List(scopeHint string) ([]ProviderEntry, error) {
	cfg, err := ReadConfigFile(s.resolver.Resolve(scopeHint))
	if err != nil {
		return nil, err
	}

	entries := make([]ProviderEntry, 0, len(cfg.Providers)+1)
	for name, p := range cfg.Providers {
		kind := p.Type
		if kind == "" {
			kind = name
		}
		entries = append(entries, ProviderEntry{
			Name:    name,
			Type:    kind,
			Model:   p.Model,
			BaseURL: p.BaseURL,
			Default: name == cfg.DefaultProvider,
		})
	}
	if _, configured := cfg.Providers[cfg.DefaultProvider]; !configured && cfg.DefaultProvider != "" {
		entries = append(entries, ProviderEntry{
			Name:    cfg.DefaultProvider,
			Type:    cfg.DefaultProvider,
			Model:   providerDefaults[cfg.DefaultProvider].model,
			Default: true,
		})
	}

	slices.SortFunc(entries, func(a, b ProviderEntry) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return entries, nil
}

func (s *ProviderService) Add(name string, providerCfg ProviderConfig, scopeHint string) error {
	if name == "" {
		return invalidInput("provider name must not be empty")
	}
	kind := providerCfg.Type
	if kind == "" {
		kind = name
	}
	if _, known := providerDefaults[kind]; !known {
		return invalidInput("unknown provider type %q, want one of %v", kind, KnownProviders())
	}

	scope := s.resolver.Resolve(scopeHint)
	cfg, err := ReadConfigFile(scope)
	if err != nil {
		return err
	}

	cfg.Providers[name] = providerCfg
	return SaveConfig(scope, cfg)
}

func (s *ProviderService) Remove(name, scopeHint string) error {
	scope := s.resolver.Resolve(scopeHint)
	cfg, err := ReadConfigFile(scope)
	if err != nil {
		return err
	}

	if _, exists := cfg.Providers[name]; !exists {
		return fmt.Errorf("%w: provider %q", ErrNotFound, name)
	}

	delete(cfg.Providers, name)
	if cfg.DefaultProvider == name {
		cfg.DefaultProvider = ProviderGroq
	}
	return SaveConfig(scope, cfg)
}

func (s *ProviderService) SetDefault(name, scopeHint string) error {
	scope := s.resolver.Resolve(scopeHint)
	cfg, err := ReadConfigFile(scope)
	if err != nil {
		return err
	}

	_, exists := cfg.Providers[name]
	_, builtin := providerDefaults[name]
	if !exists && !builtin {
		return fmt.Errorf("%w: provider %q", ErrNotFound, name)
	}

	cfg.DefaultProvider = name
	return SaveConfig(scope, cfg)
}

// Test sends a short prompt through the provider and returns its reply.
func (s *ProviderService) Test(ctx context.Context, name, scopeHint string) (string, error) {
	cfg, err := LoadConfig(s.resolver.Resolve(scopeHint))
	if err != nil {
		return "", err
	}

	gc, err := cfg.GeneratorConfig(name)
	if err != nil {
		return "", err
	}

	generator, err := s.generatorFor(ctx, gc)
	if err != nil {
		return "", fmt.Errorf("create provider: %w", err)
	}

	out, err := generator.Generate(ctx, "Say hello")
	if err != nil {
		return "", err
	}
	return Normalize(out), nil
}
