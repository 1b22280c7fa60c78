package ports

import (
	"context"
	"time"
)

// S3Storage : для S3
type S3Storage interface {
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	GeneratePresignedPutURL(ctx context.Context, key string, expire time.Duration) (string, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	DeleteObjects(ctx context.Context, keys []string) error
}

// BlobFetcher : скачивание по короткоживущему pre-signed URL
type BlobFetcher interface {
	Fetch(ctx context.Context, presignedURL string) ([]byte, error)
}
