package internal

import (
	"sync"

	"github.com/mariotoffia/goannoy/builder"
	"github.com/mariotoffia/goannoy/interfaces"
)

// Annoy returns approximate neighbours only, so it is asked for a wider
// candidate set which Index.Search then re-scores exactly.
const (
	annoyCandidateFactor = 10
	annoyMinCandidates   = 50
)

// annoySearcher holds angular-distance trees over an index's vectors.
// Item ids are positions in the index.
type annoySearcher struct {
	mu  sync.Mutex
	idx interfaces.AnnoyIndex[float32, uint32]
	n   int
}

func newAnnoySearcher(dimension int, vectors [][]float32, trees int) *annoySearcher {
	if trees <= 0 {
		trees = 10
	}

	idx := builder.Index[float32, uint32]().
		AngularDistance(dimension).
		UseMultiWorkerPolicy().
		MmapIndexAllocator().
		Build()

	for i, vec := range vectors {
		idx.AddItem(uint32(i), vec)
	}
	idx.Build(trees, -1)

	return &annoySearcher{idx: idx, n: len(vectors)}
}

// candidates returns index positions likely to contain the top k.
func (s *annoySearcher) candidates(query []float32, k int) []int {
	want := min(s.n, max(k*annoyCandidateFactor, annoyMinCandidates))

	s.mu.Lock()
	defer s.mu.Unlock()

	searchCtx := s.idx.CreateContext()
	ids, _ := s.idx.GetNnsByVector(query, want, -1, searchCtx)

	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		if int(id) < s.n {
			positions = append(positions, int(id))
		}
	}
	return positions
}
