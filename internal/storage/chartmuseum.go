package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/chartmuseum/storage"
)

// ChartmuseumClient implements ObjectStorage on chartmuseum's Amazon backend.
// Some S3-compatible hosts only accept the aws-sdk signing it uses.
type ChartmuseumClient struct {
	backend storage.Backend
}

// NewChartmuseumClient builds a path-style client for an S3-compatible endpoint.
func NewChartmuseumClient(cfg Config) (*ChartmuseumClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := cfg.region()

	// the backend reads credentials from the aws environment chain
	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"",
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &ChartmuseumClient{backend: backend}, nil
}

// ListObjects lists the objects directly under prefix. The backend returns
// paths relative to the prefix; keys are made absolute again here.
func (c *ChartmuseumClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("s3 list failed: %w", err)
	}

	base := strings.TrimSuffix(prefix, "/")
	results := make([]ObjectInfo, 0, len(objects))
	for _, object := range objects {
		key := object.Path
		if base != "" {
			key = base + "/" + object.Path
		}
		results = append(results, ObjectInfo{
			Key:          key,
			Size:         int64(len(object.Content)),
			LastModified: object.LastModified,
		})
	}
	return results, nil
}

// GetObject downloads the whole object into memory.
func (c *ChartmuseumClient) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := c.backend.GetObject(key)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(object.Content)), nil
}

func (c *ChartmuseumClient) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "NotFound")
}

var _ ObjectStorage = (*ChartmuseumClient)(nil)

func awsBool(v bool) *bool {
	return &v
}
