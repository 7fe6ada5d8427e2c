package internal

import (
	"slices"
	"strings"
	"unicode"
)

// Boundaries in order of preference. A window is cut right after the
// first kind that occurs in its back half.
var boundaries = []string{"\n\n", "\n", ". ", "! ", "? "}

// Split cuts documents into chunks of at most size runes. Consecutive
// chunks of one document share exactly overlap runes.
func Split(docs []Document, size, overlap int) ([]Chunk, error) {
	if len(docs) == 0 {
		return nil, invalidInput("no documents to split")
	}
	if size <= 0 {
		return nil, invalidInput("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, invalidInput("chunk overlap must be in [0, %d), got %d", size, overlap)
	}

	var chunks []Chunk
	for _, doc := range docs {
		chunks = append(chunks, splitDocument(doc, size, overlap)...)
	}
	return chunks, nil
}

func splitDocument(doc Document, size, overlap int) []Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}

	text := []rune(doc.Text)
	var chunks []Chunk

	start := 0
	for seq := 0; ; seq++ {
		if len(text)-start <= size {
			return append(chunks, newChunk(doc, seq, start, string(text[start:])))
		}

		// The cut must land past start+overlap so the next window advances.
		lo := max(start+overlap+1, start+size/2)
		end := cutPoint(text, lo, start+size)

		chunks = append(chunks, newChunk(doc, seq, start, string(text[start:end])))
		start = end - overlap
	}
}

// cutPoint returns the largest c in [lo, hi] such that text[:c] ends at
// the most preferred boundary available, or hi when there is none.
func cutPoint(text []rune, lo, hi int) int {
	for _, sep := range boundaries {
		if c := lastBoundary(text, lo, hi, []rune(sep)); c > 0 {
			return c
		}
	}
	for c := hi; c >= lo; c-- {
		if unicode.IsSpace(text[c-1]) {
			return c
		}
	}
	return hi
}

func lastBoundary(text []rune, lo, hi int, sep []rune) int {
	for c := hi; c >= lo; c-- {
		if c < len(sep) {
			break
		}
		if slices.Equal(text[c-len(sep):c], sep) {
			return c
		}
	}
	return 0
}
