// Package contract provides interfaces and shared utilities for bizcache's internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/bizcache/schema"
)

// Adapter performs the I/O behind an entity cache.
// Implementations never mutate the slices they are given; the cache applies
// the returned result to its own collection only after the call succeeds.
type Adapter interface {
	// Load returns the full collection for the entity.
	Load(ctx context.Context) ([]schema.Record, error)

	// Create persists data and returns the authoritative new record.
	Create(ctx context.Context, current []schema.Record, data schema.Record) (schema.Record, error)

	// Update persists a partial change for id and returns the record as it should now be cached.
	Update(ctx context.Context, current []schema.Record, id string, partial schema.Record) (schema.Record, error)

	// Delete removes id from the backend.
	Delete(ctx context.Context, current []schema.Record, id string) error
}

// StoreManager defines the interface for managing the durable store.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetEntityStore() KVStore
}

// KVStore defines the interface for durable key/value storage.
// This allows mocking the store for testing.
type KVStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.StoreStatus, error)
	Close() error
}

// TokenSource supplies the bearer credential attached to remote calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ErrorReporter receives a human-readable message for every backend failure.
type ErrorReporter interface {
	Report(msg string)
}
