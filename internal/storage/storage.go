// Package storage keeps report photos in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"strings"

	"nrw-report-service/internal/config"
)

// ObjectStorage is the bucket the service uploads report photos to. The
// bucket is fixed when the implementation is built.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	PublicURL(key string) string
	Remove(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
}

// New builds the backend named by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "minio":
		return NewMinioStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func publicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = pathEscape(p)
	}
	return strings.Join(parts, "/")
}
