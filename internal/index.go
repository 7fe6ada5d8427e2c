package internal

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Search modes accepted in index.search.
const (
	SearchExact = "exact"
	SearchAnnoy = "annoy"
)

// Index is an immutable set of chunks and their L2-normalised vectors.
// It is safe for concurrent Search calls.
type Index struct {
	dimension int
	model     string
	revision  string
	createdAt time.Time
	format    string
	chunks    []Chunk
	vectors   [][]float32
	annoy     *annoySearcher
}

type IndexOption func(*indexOptions)

type indexOptions struct {
	model    string
	revision string
	format   string
	search   string
	trees    int
}

func WithModel(model string) IndexOption {
	return func(o *indexOptions) { o.model = model }
}

func WithRevision(revision string) IndexOption {
	return func(o *indexOptions) { o.revision = revision }
}

// WithFormat picks the on-disk format used by Save, and restricts
// LoadIndex to that format.
func WithFormat(format string) IndexOption {
	return func(o *indexOptions) { o.format = format }
}

// WithSearch selects exact or annoy search. trees only matters for annoy.
func WithSearch(mode string, trees int) IndexOption {
	return func(o *indexOptions) {
		o.search = mode
		o.trees = trees
	}
}

func newIndexOptions(opts []IndexOption) indexOptions {
	o := indexOptions{format: FormatGob, search: SearchExact, trees: 10}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// BuildIndex builds an index from scratch. Chunks and embeddings are
// paired by position.
func BuildIndex(chunks []Chunk, embeddings [][]float32, opts ...IndexOption) (*Index, error) {
	if len(chunks) == 0 {
		return nil, invalidInput("no chunks to index")
	}
	if len(chunks) != len(embeddings) {
		return nil, invalidInput("%d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	dimension := len(embeddings[0])
	if dimension == 0 {
		return nil, invalidInput("empty embedding vector")
	}

	vectors := make([][]float32, len(embeddings))
	for i, vec := range embeddings {
		if len(vec) != dimension {
			return nil, invalidInput("embedding %d has dimension %d, expected %d", i, len(vec), dimension)
		}
		vectors[i] = l2Normalize(vec)
	}

	o := newIndexOptions(opts)
	return newIndex(&snapshot{
		Version:   snapshotVersion,
		Model:     o.model,
		Dimension: dimension,
		Revision:  o.revision,
		CreatedAt: time.Now().UTC(),
		Chunks:    slices.Clone(chunks),
		Vectors:   vectors,
	}, o)
}

func newIndex(snap *snapshot, o indexOptions) (*Index, error) {
	ix := &Index{
		dimension: snap.Dimension,
		model:     snap.Model,
		revision:  snap.Revision,
		createdAt: snap.CreatedAt,
		format:    o.format,
		chunks:    snap.Chunks,
		vectors:   snap.Vectors,
	}

	switch o.search {
	case SearchExact, "":
	case SearchAnnoy:
		ix.annoy = newAnnoySearcher(ix.dimension, ix.vectors, o.trees)
	default:
		return nil, invalidInput("unknown search mode %q", o.search)
	}

	return ix, nil
}

func (ix *Index) Len() int             { return len(ix.chunks) }
func (ix *Index) Dimension() int       { return ix.dimension }
func (ix *Index) Model() string        { return ix.model }
func (ix *Index) Revision() string     { return ix.revision }
func (ix *Index) CreatedAt() time.Time { return ix.createdAt }
func (ix *Index) Format() string       { return ix.format }

// Chunks returns a copy of the indexed chunks in insertion order.
func (ix *Index) Chunks() []Chunk { return slices.Clone(ix.chunks) }

// Sources returns the distinct chunk sources in first-seen order.
func (ix *Index) Sources() []string {
	seen := make(map[string]bool)
	var sources []string
	for _, c := range ix.chunks {
		if !seen[c.Source] {
			seen[c.Source] = true
			sources = append(sources, c.Source)
		}
	}
	return sources
}

// Search returns up to k chunks ranked by cosine similarity to query.
// Equal scores keep insertion order.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, invalidInput("k must be positive, got %d", k)
	}
	if len(ix.chunks) == 0 {
		return []SearchResult{}, nil
	}
	if len(query) != ix.dimension {
		return nil, dimensionMismatch(ix.dimension, len(query))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := l2Normalize(query)

	var positions []int
	if ix.annoy != nil {
		positions = ix.annoy.candidates(q, k)
	} else {
		positions = make([]int, len(ix.vectors))
		for i := range positions {
			positions[i] = i
		}
	}

	type scored struct {
		pos   int
		score float32
	}
	ranked := make([]scored, len(positions))
	for i, pos := range positions {
		ranked[i] = scored{pos: pos, score: dot(q, ix.vectors[pos])}
	}
	slices.SortFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	n := min(k, len(ranked))
	results := make([]SearchResult, n)
	for i := range n {
		results[i] = SearchResult{Chunk: ix.chunks[ranked[i].pos], Score: ranked[i].score}
	}
	return results, nil
}

// Save writes the index under location. The snapshot goes to a temp file
// in the same directory and is renamed over the artifact, so a reader
// sees either the previous index or the new one.
func (ix *Index) Save(ctx context.Context, location string) error {
	codec, err := codecFor(ix.format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(location, 0755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(location, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := codec.write(ctx, tmpPath, ix.snapshot()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write index: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(location, codec.filename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename index: %w", err)
	}

	// Drop artifacts of other formats so LoadIndex cannot pick a stale one.
	for _, other := range codecs {
		if other.format != codec.format {
			_ = os.Remove(filepath.Join(location, other.filename))
		}
	}

	return nil
}

func (ix *Index) snapshot() *snapshot {
	return &snapshot{
		Version:   snapshotVersion,
		Model:     ix.model,
		Dimension: ix.dimension,
		Revision:  ix.revision,
		CreatedAt: ix.createdAt,
		Chunks:    ix.chunks,
		Vectors:   ix.vectors,
	}
}

// LoadIndex reads the index persisted under location. It fails with
// ErrNotFound when nothing was saved there and with ErrCorruptData when the
// artifact cannot be decoded. When embedder is non-nil its dimension and
// model must match the persisted ones.
func LoadIndex(ctx context.Context, location string, embedder Embedder, opts ...IndexOption) (*Index, error) {
	o := newIndexOptions(opts)

	candidates := codecs
	if explicitFormat(opts) {
		codec, err := codecFor(o.format)
		if err != nil {
			return nil, err
		}
		candidates = []indexCodec{codec}
	}

	for _, codec := range candidates {
		path := filepath.Join(location, codec.filename)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("stat index: %w", err)
		}

		snap, err := codec.read(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := snap.validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptData, path, err)
		}
		if embedder != nil {
			if embedder.Dimension() != snap.Dimension {
				return nil, dimensionMismatch(snap.Dimension, embedder.Dimension())
			}
			if snap.Model != "" && embedder.Model() != snap.Model {
				return nil, fmt.Errorf("%w: index built with model %q, embedder is %q", ErrDimensionMismatch, snap.Model, embedder.Model())
			}
		}

		o.format = codec.format
		return newIndex(snap, o)
	}

	return nil, fmt.Errorf("%w: no index at %s", ErrNotFound, location)
}

func explicitFormat(opts []IndexOption) bool {
	var o indexOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o.format != ""
}
