package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one stored object in a listing.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// BlobStorage is the key-value object store the job reads its SKU list from
// and writes snapshots to. List is paginated: the returned token is passed
// back to continue, an empty token means the listing is complete.
type BlobStorage interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	List(ctx context.Context, bucket, prefix, token string, limit int) ([]ObjectInfo, string, error)
	Delete(ctx context.Context, bucket, key string) error
}
