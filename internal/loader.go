package internal

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type loadFunc func(path string) ([]Document, error)

var loaders = map[string]loadFunc{
	".pdf":      loadPDF,
	".md":       loadMarkdown,
	".markdown": loadMarkdown,
	".txt":      loadText,
}

// LoadDocuments walks dir in lexical order and loads every supported file
// not excluded by .ragignore. Hidden directories are skipped.
func LoadDocuments(dir string) ([]Document, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: data directory %s", ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, invalidInput("data path %s is not a directory", dir)
	}

	ignore, err := NewIgnoreMatcher(dir)
	if err != nil {
		return nil, fmt.Errorf("read ignore files: %w", err)
	}

	var docs []Document
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || ignore.Match(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		load, ok := loaders[strings.ToLower(filepath.Ext(path))]
		if !ok || ignore.Match(path, false) {
			return nil
		}

		loaded, err := load(path)
		if err != nil {
			return err
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	return docs, nil
}

func loadText(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return []Document{{Source: path, Text: string(data)}}, nil
}

// loadPDF yields one document per non-empty page.
func loadPDF(path string) ([]Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var docs []Document
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf %s page %d: %w", path, i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		docs = append(docs, Document{Source: path, Page: i, Text: content})
	}

	return docs, nil
}

// loadMarkdown yields one document per heading section. Text before the
// first heading gets an empty section.
func loadMarkdown(path string) ([]Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseMarkdown(path, src), nil
}

func parseMarkdown(source string, src []byte) []Document {
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var docs []Document
	var section string
	var body strings.Builder

	flush := func() {
		if content := strings.TrimSpace(body.String()); content != "" {
			docs = append(docs, Document{Source: source, Section: section, Text: content})
		}
		body.Reset()
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			flush()
			section = blockText(heading, src)
			continue
		}
		if content := blockText(n, src); content != "" {
			body.WriteString(content)
			body.WriteString("\n\n")
		}
	}
	flush()

	return docs
}

// blockText concatenates the source lines of every leaf block under n.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := c.Lines()
		if lines == nil || lines.Len() == 0 {
			return ast.WalkContinue, nil
		}
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
