package internal

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"time"
)

// On-disk formats accepted in index.format.
const (
	FormatGob    = "gob"
	FormatSQLite = "sqlite"
)

const snapshotVersion = 1

// snapshot is everything an index persists.
type snapshot struct {
	Version   int
	Model     string
	Dimension int
	Revision  string
	CreatedAt time.Time
	Chunks    []Chunk
	Vectors   [][]float32
}

func (s *snapshot) validate() error {
	if s.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if s.Dimension <= 0 {
		return fmt.Errorf("bad dimension %d", s.Dimension)
	}
	if len(s.Chunks) == 0 {
		return errors.New("no chunks")
	}
	if len(s.Chunks) != len(s.Vectors) {
		return fmt.Errorf("%d chunks but %d vectors", len(s.Chunks), len(s.Vectors))
	}
	for i, vec := range s.Vectors {
		if len(vec) != s.Dimension {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vec), s.Dimension)
		}
	}
	return nil
}

type indexCodec struct {
	format   string
	filename string
	write    func(ctx context.Context, path string, snap *snapshot) error
	read     func(ctx context.Context, path string) (*snapshot, error)
}

// codecs is also the probe order of LoadIndex.
var codecs = []indexCodec{
	{format: FormatGob, filename: "index.gob", write: writeGob, read: readGob},
	{format: FormatSQLite, filename: "index.db", write: writeSQLite, read: readSQLite},
}

func codecFor(format string) (indexCodec, error) {
	for _, c := range codecs {
		if c.format == format {
			return c, nil
		}
	}
	return indexCodec{}, invalidInput("unknown index format %q", format)
}

func writeGob(_ context.Context, path string, snap *snapshot) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(f).Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	return f.Close()
}

func readGob(_ context.Context, path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrCorruptData, path, err)
	}
	return &snap, nil
}
