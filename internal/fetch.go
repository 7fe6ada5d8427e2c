package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
)

type ProgressWriter struct {
	Total      int64
	Written    int64
	OnProgress func(written, total int64)
}

func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.Written += int64(n)
	if pw.OnProgress != nil {
		pw.OnProgress(pw.Written, pw.Total)
	}
	return n, nil
}

// Fetcher downloads configured sources into the data directory.
type Fetcher struct {
	dataDir    string
	client     *http.Client
	logger     *log.Logger
	onProgress func(name string, written, total int64)
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

func WithFetchLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

func WithProgress(fn func(name string, written, total int64)) FetcherOption {
	return func(f *Fetcher) { f.onProgress = fn }
}

func NewFetcher(dataDir string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		dataDir: dataDir,
		client:  http.DefaultClient,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Ensure downloads every source whose file is missing and returns the
// names it fetched. Existing files are left alone.
func (f *Fetcher) Ensure(ctx context.Context, sources []Source) ([]string, error) {
	var fetched []string
	for _, src := range sources {
		name, err := sourceFilename(src)
		if err != nil {
			return fetched, err
		}

		dest := filepath.Join(f.dataDir, name)
		if _, err := os.Stat(dest); err == nil {
			f.logger.Debug("source present", "file", name)
			continue
		}

		if err := os.MkdirAll(f.dataDir, 0755); err != nil {
			return fetched, fmt.Errorf("create data dir: %w", err)
		}

		f.logger.Info("fetching source", "url", src.URL, "file", name)
		if err := f.download(ctx, src.URL, dest, name); err != nil {
			return fetched, fmt.Errorf("fetch %s: %w", src.URL, err)
		}
		fetched = append(fetched, name)
	}
	return fetched, nil
}

func sourceFilename(src Source) (string, error) {
	if src.URL == "" {
		return "", invalidInput("source without url")
	}
	name := src.Filename
	if name == "" {
		u, err := url.Parse(src.URL)
		if err != nil {
			return "", invalidInput("source url %q: %v", src.URL, err)
		}
		name = path.Base(u.Path)
	}
	if name != filepath.Base(name) || name == "." || name == ".." || name == "/" {
		return "", invalidInput("source filename %q must be a plain file name", name)
	}
	return name, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, dest, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
		}
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpFile := tmp.Name()

	pw := &ProgressWriter{Total: resp.ContentLength}
	if f.onProgress != nil {
		pw.OnProgress = func(written, total int64) { f.onProgress(name, written, total) }
	}

	_, err = io.Copy(tmp, io.TeeReader(resp.Body, pw))
	closeErr := tmp.Close()

	if err = errors.Join(err, closeErr); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("write file: %w", err)
	}

	if err := os.Rename(tmpFile, dest); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("rename file: %w", err)
	}

	return nil
}
