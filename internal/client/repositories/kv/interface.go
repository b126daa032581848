// Package kv is the durable key-value storage behind the persisted session.
package kv

import "context"

// Repository stores opaque values by key.
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
