package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// BlobStore is the durable key-value boundary of the cart: a named blob can be read, written and
// removed. Implementations must be safe for concurrent use.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the blob; removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}
