package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/mpstock/internal/snapshot"
)

type memoryStorage struct {
	objects  map[string]string
	modified map[string]time.Time
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string]string{}, modified: map[string]time.Time{}}
}

func (m *memoryStorage) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for key, body := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: int64(len(body)), LastModified: m.modified[key]})
		}
	}
	return out, nil
}

func (m *memoryStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (m *memoryStorage) UploadObject(ctx context.Context, key string, data []byte) error {
	m.objects[key] = string(data)
	m.modified[key] = time.Now()
	return nil
}

func TestSnapshotLoader_Key(t *testing.T) {
	store := newMemoryStorage()
	require.NoError(t, store.UploadObject(context.Background(), "dashboard_data.json", []byte(`{"last_update":"v1"}`)))

	doc, err := NewSnapshotLoader(store, "dashboard_data.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", doc.LastUpdate)

	_, err = NewSnapshotLoader(store, "missing.json").Load(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
}

func TestSnapshotLoader_PrefixPicksNewest(t *testing.T) {
	store := newMemoryStorage()
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	store.objects["snapshots/a.json"] = `{"last_update":"old"}`
	store.modified["snapshots/a.json"] = base
	store.objects["snapshots/b.json"] = `{"last_update":"new"}`
	store.modified["snapshots/b.json"] = base.Add(time.Hour)
	store.objects["snapshots/c.txt"] = `not json`
	store.modified["snapshots/c.txt"] = base.Add(2 * time.Hour)

	doc, err := NewSnapshotLoader(store, "snapshots/").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", doc.LastUpdate)

	_, err = NewSnapshotLoader(store, "empty/").Load(context.Background())
	assert.ErrorIs(t, err, snapshot.ErrNoSnapshot)
}

func TestSplitEndpoint(t *testing.T) {
	host, secure := splitEndpoint("https://s3.example.com/", false)
	assert.Equal(t, "s3.example.com", host)
	assert.True(t, secure)

	host, secure = splitEndpoint("http://minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.False(t, secure)

	host, secure = splitEndpoint("minio:9000", true)
	assert.Equal(t, "minio:9000", host)
	assert.True(t, secure)
}

func TestNewMinioClient_Validation(t *testing.T) {
	_, err := NewMinioClient(Config{})
	assert.Error(t, err)

	_, err = NewMinioClient(Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	client, err := NewMinioClient(Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "snapshots"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNew_SelectsClient(t *testing.T) {
	cfg := Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "snapshots"}

	store, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &MinioClient{}, store)

	cfg.Client = "unknown"
	_, err = New(cfg)
	assert.Error(t, err)

	_, err = New(Config{Client: ClientChartmuseum})
	assert.Error(t, err)
}
