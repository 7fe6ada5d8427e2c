package internal

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkNamespace seeds the deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("6f1c2a4e-52d3-4a8e-9f0d-3b7e51c9d2a1")

// Document is a unit of source text produced by a loader.
type Document struct {
	Source  string // file path or URL
	Page    int    // 1-based page for paged formats, 0 otherwise
	Section string // heading for structured formats
	Text    string
}

// Chunk is a contiguous substring of a Document's text.
type Chunk struct {
	ID      string
	Source  string
	Page    int
	Section string
	Seq     int // position within the source document
	Start   int // rune offset into the document text
	Text    string
}

func newChunk(doc Document, seq, start int, text string) Chunk {
	name := fmt.Sprintf("%s#%d#%s#%d", doc.Source, doc.Page, doc.Section, seq)
	return Chunk{
		ID:      uuid.NewSHA1(chunkNamespace, []byte(name)).String(),
		Source:  doc.Source,
		Page:    doc.Page,
		Section: doc.Section,
		Seq:     seq,
		Start:   start,
		Text:    text,
	}
}

// Origin renders the chunk's back-reference for display.
func (c Chunk) Origin() string {
	switch {
	case c.Page > 0:
		return fmt.Sprintf("%s (page %d)", c.Source, c.Page)
	case c.Section != "":
		return fmt.Sprintf("%s (%s)", c.Source, c.Section)
	default:
		return c.Source
	}
}
