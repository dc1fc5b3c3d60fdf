package repo

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// KVStore is durable key-value storage for text values.
type KVStore interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes the key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
