package v1

import "time"

// IndexStats describes a persisted vector index.
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

// SearchResult represents a retrieved passage.
type SearchResult struct {
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Section string  `json:"section,omitempty"`
	Text    string  `json:"text"`
	Score   float32 `json:"score"`
}
