package internal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Pipeline answers questions by retrieval, prompt assembly and generation.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	retriever ChunkRetriever
	prompt    PromptTemplate
	generator Generator
	logger    *log.Logger
}

type PipelineOption func(*Pipeline)

func WithPrompt(p PromptTemplate) PipelineOption {
	return func(pl *Pipeline) { pl.prompt = p }
}

func WithLogger(l *log.Logger) PipelineOption {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

func NewPipeline(retriever ChunkRetriever, generator Generator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		retriever: retriever,
		prompt:    NewPromptTemplate(""),
		generator: generator,
		logger:    discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answer expects a question already accepted by ValidateQuestion.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	results, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", p.fail(StageRetrieve, err)
	}

	prompt, err := p.assemble(question, results)
	if err != nil {
		return "", p.fail(StageAssemble, err)
	}

	raw, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return "", p.fail(StageGenerate, err)
	}

	answer := Normalize(raw)
	p.logger.Debug("answered", "chunks", len(results), "chars", len(answer))
	return answer, nil
}

func (p *Pipeline) assemble(question string, results []SearchResult) (prompt string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.prompt.Assemble(question, results), nil
}

func (p *Pipeline) fail(stage string, err error) error {
	p.logger.Error("pipeline stage failed", "stage", stage, "err", err)
	return &PipelineError{Stage: stage, Err: err}
}

// ValidateQuestion trims q and rejects blank questions.
func ValidateQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", invalidInput("question must not be empty")
	}
	return q, nil
}

// PipelineDeps supplies the constructors CreatePipeline wires together.
type PipelineDeps struct {
	Embedder  func(ctx context.Context) (Embedder, error)
	Index     func(ctx context.Context, embedder Embedder) (*Index, error)
	Generator func(ctx context.Context) (Generator, error)
	K         int
	Prompt    PromptTemplate
	Logger    *log.Logger
}

// Pipeline components named in AssemblyError.
const (
	ComponentEmbedder  = "embedder"
	ComponentIndex     = "index"
	ComponentRetriever = "retriever"
	ComponentGenerator = "generator"
)

// CreatePipeline builds a fully wired pipeline or returns nil with an
// *AssemblyError naming the component that failed.
func CreatePipeline(ctx context.Context, deps PipelineDeps) (*Pipeline, error) {
	logger := deps.Logger
	if logger == nil {
		logger = discardLogger()
	}

	fail := func(component string, err error) (*Pipeline, error) {
		logger.Error("pipeline assembly failed", "component", component, "err", err)
		return nil, &AssemblyError{Component: component, Err: err}
	}

	embedder, err := build(ComponentEmbedder, func() (Embedder, error) { return deps.Embedder(ctx) })
	if err != nil {
		return fail(ComponentEmbedder, err)
	}

	index, err := build(ComponentIndex, func() (*Index, error) { return deps.Index(ctx, embedder) })
	if err == nil && index == nil {
		err = fmt.Errorf("%s constructor returned nil", ComponentIndex)
	}
	if err != nil {
		return fail(ComponentIndex, err)
	}

	retriever, err := NewRetriever(embedder, index, deps.K)
	if err != nil {
		return fail(ComponentRetriever, err)
	}

	generator, err := build(ComponentGenerator, func() (Generator, error) { return deps.Generator(ctx) })
	if err != nil {
		return fail(ComponentGenerator, err)
	}

	logger.Info("pipeline ready",
		"model", index.Model(),
		"chunks", index.Len(),
		"k", deps.K,
	)
	return NewPipeline(retriever, generator, WithPrompt(deps.Prompt), WithLogger(logger)), nil
}

// build runs a component constructor, turning a panic or a nil result into
// an error.
func build[T any](name string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	v, err = fn()
	if err != nil {
		return v, err
	}
	if any(v) == nil {
		return v, fmt.Errorf("%s constructor returned nil", name)
	}
	return v, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
