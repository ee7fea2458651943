package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/mpstock/internal/snapshot"
)

type fileSource interface {
	FindLatest(ctx context.Context, folderID, name string) (*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// Loader reads the snapshot document from a Drive folder. The document is
// downloaded again only when the file's modification time changes.
type Loader struct {
	files    fileSource
	folderID string
	fileName string

	mu       sync.Mutex
	modified string
	last     *snapshot.Document
}

func NewLoader(s *Service, folderID, fileName string) *Loader {
	return newLoader(s, folderID, fileName)
}

// NewLoaderForPath resolves a slash separated folder path before building
// the loader.
func NewLoaderForPath(ctx context.Context, s *Service, folder, fileName string) (*Loader, error) {
	if !strings.Contains(folder, "/") {
		return NewLoader(s, folder, fileName), nil
	}
	folderID, err := s.FindFolderByPath(ctx, folder)
	if err != nil {
		return nil, err
	}
	return NewLoader(s, folderID, fileName), nil
}

func newLoader(files fileSource, folderID, fileName string) *Loader {
	return &Loader{files: files, folderID: folderID, fileName: fileName}
}

func (l *Loader) Name() string {
	return "drive"
}

func (l *Loader) Load(ctx context.Context) (*snapshot.Document, error) {
	file, err := l.files.FindLatest(ctx, l.folderID, l.fileName)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("drive file %s: %w", l.fileName, snapshot.ErrNoSnapshot)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last != nil && file.ModifiedTime != "" && file.ModifiedTime == l.modified {
		log.Debug().Str("file_id", file.ID).Str("modified", file.ModifiedTime).Msg("drive snapshot unchanged")
		return l.last, nil
	}

	pr, pw := io.Pipe()
	go func() {
		err := l.files.DownloadFile(ctx, file.ID, pw)
		pw.CloseWithError(err)
	}()

	doc, err := snapshot.Decode(pr)
	// unblock the writer if decoding stopped early
	pr.Close()
	if err != nil {
		return nil, fmt.Errorf("drive file %s: %w", file.Name, err)
	}

	log.Info().
		Str("file_id", file.ID).
		Str("modified", file.ModifiedTime).
		Str("last_update", doc.LastUpdate).
		Msg("downloaded drive snapshot")

	l.modified = file.ModifiedTime
	l.last = doc
	return doc, nil
}

var _ snapshot.Loader = (*Loader)(nil)
