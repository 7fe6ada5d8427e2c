package internal

import (
	"context"
	"testing"
)

func TestAnnoySearchFindsNearest(t *testing.T) {
	chunks := []Chunk{{ID: "one", Text: "one"}, {ID: "two", Text: "two"}, {ID: "three", Text: "three"}}
	vecs := [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	idx, err := BuildIndex(chunks, vecs, WithSearch(SearchAnnoy, 2))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	results, err := idx.Search(context.Background(), []float32{1.0, 0.1, 0.0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "one" {
		t.Errorf("expected closest match to be 'one', got %q", results[0].Chunk.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted: %v", results)
	}
}

func TestAnnoyMatchesExactOnSmallIndex(t *testing.T) {
	e, _ := NewHashEmbedder(32)
	ctx := context.Background()

	texts := []string{
		"fever is a symptom", "aspirin reduces fever", "rest helps recovery",
		"drink water when ill", "headache and fever", "vaccines prevent disease",
	}
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{ID: text, Text: text}
	}
	vecs, err := e.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	exact, err := BuildIndex(chunks, vecs)
	if err != nil {
		t.Fatalf("build exact: %v", err)
	}
	approx, err := BuildIndex(chunks, vecs, WithSearch(SearchAnnoy, 5))
	if err != nil {
		t.Fatalf("build annoy: %v", err)
	}

	q, _ := e.Embed(ctx, "what reduces fever")
	want, err := exact.Search(ctx, q, 3)
	if err != nil {
		t.Fatalf("exact search: %v", err)
	}
	got, err := approx.Search(ctx, q, 3)
	if err != nil {
		t.Fatalf("annoy search: %v", err)
	}

	// With fewer items than the candidate floor every item is re-scored.
	for i := range want {
		if got[i].Chunk.ID != want[i].Chunk.ID {
			t.Errorf("rank %d: got %q, want %q", i, got[i].Chunk.ID, want[i].Chunk.ID)
		}
	}
}
