package ports

import (
	"context"
	"time"
)

// Storage keys used for durable client state.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is durable client-side key/value storage scoped to one client.
// A ttl of zero or less keeps the value until it is deleted.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// StorageProvider hands out isolated Storage namespaces, one per client.
type StorageProvider interface {
	Namespace(id string) Storage
}

// StorageProviderFunc adapts a function to StorageProvider.
type StorageProviderFunc func(id string) Storage

// Namespace implements StorageProvider.
func (f StorageProviderFunc) Namespace(id string) Storage { return f(id) }
