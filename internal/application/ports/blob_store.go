package ports

import "context"

// BlobStore keeps ciphertext objects addressed by storage key.
type BlobStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
	GetBucket() string
}
