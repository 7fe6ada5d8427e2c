package internal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFilename lists data files the loader must skip, in gitignore syntax.
const IgnoreFilename = ".ragignore"

type IgnoreMatcher struct {
	patterns []gitignore.Pattern
	basePath string
}

// NewIgnoreMatcher collects every .gitignore below basePath, then the
// .ragignore at its root. Later patterns win, so .ragignore can re-include.
func NewIgnoreMatcher(basePath string) (*IgnoreMatcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(basePath), nil)
	if err != nil {
		return nil, fmt.Errorf("read gitignore patterns: %w", err)
	}

	rag, err := parseIgnoreFile(filepath.Join(basePath, IgnoreFilename))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return &IgnoreMatcher{patterns: append(patterns, rag...), basePath: basePath}, nil
}

// Match reports whether path, which must live under the matcher's base
// directory, is excluded.
func (m *IgnoreMatcher) Match(path string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	rel, err := filepath.Rel(m.basePath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	excluded := false
	for _, p := range m.patterns {
		switch p.Match(parts, isDir) {
		case gitignore.Exclude:
			excluded = true
		case gitignore.Include:
			excluded = false
		}
	}
	return excluded
}

func parseIgnoreFile(path string) ([]gitignore.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return patterns, scanner.Err()
}
