package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/chartmuseum/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartmuseumClient_LocalBackend(t *testing.T) {
	ctx := context.Background()
	client := &ChartmuseumClient{backend: storage.NewLocalFilesystemBackend(t.TempDir())}

	require.NoError(t, client.UploadObject(ctx, "snapshots/a.json", []byte(`{"last_update":"a"}`)))

	objects, err := client.ListObjects(ctx, "snapshots/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "snapshots/a.json", objects[0].Key)

	rc, err := client.GetObject(ctx, "snapshots/a.json")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_update":"a"}`, string(data))

	_, err = client.GetObject(ctx, "snapshots/missing.json")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestChartmuseumClient_SnapshotLoader(t *testing.T) {
	ctx := context.Background()
	client := &ChartmuseumClient{backend: storage.NewLocalFilesystemBackend(t.TempDir())}
	require.NoError(t, client.UploadObject(ctx, "dashboard.json", []byte(`{"last_update":"2024-05-01 10:00"}`)))

	doc, err := NewSnapshotLoader(client, "dashboard.json").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 10:00", doc.Version())
}

func TestNewChartmuseumClient_Validation(t *testing.T) {
	_, err := NewChartmuseumClient(Config{Endpoint: "s3.local"})
	assert.Error(t, err)
}
