package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/mpstock/internal/snapshot"
)

// SnapshotLoader reads the snapshot document from object storage. A key
// ending in "/" is treated as a prefix and the newest object under it wins.
type SnapshotLoader struct {
	store ObjectStorage
	key   string
}

func NewSnapshotLoader(store ObjectStorage, key string) *SnapshotLoader {
	return &SnapshotLoader{store: store, key: key}
}

func (l *SnapshotLoader) Name() string {
	return "s3"
}

func (l *SnapshotLoader) Load(ctx context.Context) (*snapshot.Document, error) {
	key, err := l.resolveKey(ctx)
	if err != nil {
		return nil, err
	}

	body, err := l.store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("object %s: %w", key, snapshot.ErrNoSnapshot)
		}
		return nil, err
	}
	defer body.Close()

	doc, err := snapshot.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}

	log.Debug().Str("key", key).Str("last_update", doc.LastUpdate).Msg("loaded snapshot from object storage")
	return doc, nil
}

func (l *SnapshotLoader) resolveKey(ctx context.Context) (string, error) {
	if !strings.HasSuffix(l.key, "/") {
		return l.key, nil
	}

	objects, err := l.store.ListObjects(ctx, l.key)
	if err != nil {
		return "", err
	}

	var newest *ObjectInfo
	for i := range objects {
		obj := &objects[i]
		if !strings.HasSuffix(strings.ToLower(obj.Key), ".json") {
			continue
		}
		if newest == nil || obj.LastModified.After(newest.LastModified) {
			newest = obj
		}
	}
	if newest == nil {
		return "", fmt.Errorf("prefix %s: %w", l.key, snapshot.ErrNoSnapshot)
	}
	return newest.Key, nil
}

var _ snapshot.Loader = (*SnapshotLoader)(nil)
