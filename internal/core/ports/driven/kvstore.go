package driven

import (
	"context"

	"github.com/persistdb/kvlite/internal/core/domain"
)

// KVStore is a durable, thread-safe key-value mapping with upsert
// semantics. Every operation is atomic with respect to other operations
// on the same instance; there is deliberately no snapshot isolation
// across separate calls, so two consecutive enumerations may observe
// different states if another goroutine writes between them.
//
// All operations return domain.ErrClosed after Close.
type KVStore interface {
	// Get returns the value stored under key, or domain.ErrNotFound.
	Get(ctx context.Context, key any) (any, error)

	// GetDefault returns the value stored under key, or def when the
	// key is absent. It never inserts def into the store.
	GetDefault(ctx context.Context, key any, def any) (any, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value any) error

	// SetMany stores all pairs in a single transaction with one commit.
	// An interrupted batch either fully commits or fully rolls back.
	SetMany(ctx context.Context, pairs []domain.Pair) error

	// SetMap stores all entries of m in a single transaction.
	SetMap(ctx context.Context, m map[string]any) error

	// Delete removes key if present. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key any) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key any) (bool, error)

	// Pop atomically reads and deletes key, returning the prior value
	// or domain.ErrNotFound.
	Pop(ctx context.Context, key any) (any, error)

	// PopDefault is Pop, returning def instead of ErrNotFound.
	PopDefault(ctx context.Context, key any, def any) (any, error)

	// Keys returns all keys. The snapshot is consistent within this
	// single call only.
	Keys(ctx context.Context) ([]any, error)

	// Values returns all values, deserialized if a codec is configured.
	Values(ctx context.Context) ([]any, error)

	// Items returns all key/value pairs.
	Items(ctx context.Context) ([]domain.Pair, error)

	// Len returns the number of stored pairs.
	Len(ctx context.Context) (int, error)

	// Clear deletes every pair. The store description is untouched.
	Clear(ctx context.Context) error

	// Vacuum asks the engine to reclaim space freed by deletions and
	// overwrites. May be slow on large stores.
	Vacuum(ctx context.Context) error

	// About returns the free-text store description, or "" if never set.
	About(ctx context.Context) (string, error)

	// SetAbout overwrites the store description.
	SetAbout(ctx context.Context, description string) error

	// Close releases the underlying resources.
	Close() error
}
