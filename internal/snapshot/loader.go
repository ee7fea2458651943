package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Loader fetches the latest complete snapshot document.
type Loader interface {
	Name() string
	Load(ctx context.Context) (*Document, error)
}

// FileLoader reads the document from a local JSON file.
type FileLoader struct {
	Path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

func (l *FileLoader) Name() string {
	return "file"
}

func (l *FileLoader) Load(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot file %s: %w", l.Path, ErrNoSnapshot)
		}
		return nil, fmt.Errorf("open snapshot file %s: %w", l.Path, err)
	}
	defer f.Close()

	return Decode(f)
}

var _ Loader = (*FileLoader)(nil)
