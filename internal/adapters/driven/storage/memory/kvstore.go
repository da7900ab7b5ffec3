// Package memory provides an in-memory implementation of the KVStore
// port for tests and ephemeral use. It honours the same error taxonomy
// as the durable adapter but persists nothing.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/persistdb/kvlite/internal/core/domain"
	"github.com/persistdb/kvlite/internal/core/ports/driven"
)

// Ensure Store implements the port.
var _ driven.KVStore = (*Store)(nil)

// mapKey is a comparable normal form for native scalar keys, needed
// because []byte cannot be a Go map key.
type mapKey struct {
	kind byte // 's' text, 'b' blob, 'i' integer, 'f' float
	str  string
	num  int64
	flt  float64
}

// normalizeKey converts a native scalar key to its map form.
func normalizeKey(key any) (mapKey, error) {
	switch v := key.(type) {
	case string:
		return mapKey{kind: 's', str: v}, nil
	case []byte:
		return mapKey{kind: 'b', str: string(v)}, nil
	case int:
		return mapKey{kind: 'i', num: int64(v)}, nil
	case int32:
		return mapKey{kind: 'i', num: int64(v)}, nil
	case int64:
		return mapKey{kind: 'i', num: v}, nil
	case float32:
		return mapKey{kind: 'f', flt: float64(v)}, nil
	case float64:
		return mapKey{kind: 'f', flt: v}, nil
	default:
		return mapKey{}, domain.ValidateKey(key)
	}
}

// denormalizeKey restores a key in the same shape the durable adapter
// returns from enumeration: text, blob, int64 or float64.
func denormalizeKey(key mapKey) any {
	switch key.kind {
	case 's':
		return key.str
	case 'b':
		return []byte(key.str)
	case 'i':
		return key.num
	default:
		return key.flt
	}
}

// Store is an in-memory KVStore.
type Store struct {
	mu     sync.RWMutex
	data   map[mapKey]any
	about  string
	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[mapKey]any)}
}

// Get returns the value stored under key, or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, key any) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrClosed
	}
	k, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	value, ok := s.data[k]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return value, nil
}

// GetDefault returns the value stored under key, or def when absent.
func (s *Store) GetDefault(ctx context.Context, key any, def any) (any, error) {
	value, err := s.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return def, nil
	}
	return value, err
}

// Set stores value under key, overwriting any previous value.
func (s *Store) Set(_ context.Context, key, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	s.data[k] = value
	return nil
}

// SetMany stores all pairs. The batch is all-or-nothing: a bad key
// leaves the store unchanged.
func (s *Store) SetMany(_ context.Context, pairs []domain.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	staged := make(map[mapKey]any, len(pairs))
	for _, pair := range pairs {
		k, err := normalizeKey(pair.Key)
		if err != nil {
			return err
		}
		staged[k] = pair.Value
	}
	for k, v := range staged {
		s.data[k] = v
	}
	return nil
}

// SetMap stores all entries of m.
func (s *Store) SetMap(ctx context.Context, m map[string]any) error {
	pairs := make([]domain.Pair, 0, len(m))
	for key, value := range m {
		pairs = append(pairs, domain.Pair{Key: key, Value: value})
	}
	return s.SetMany(ctx, pairs)
}

// Delete removes key if present.
func (s *Store) Delete(_ context.Context, key any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	delete(s.data, k)
	return nil
}

// Exists reports whether key is present.
func (s *Store) Exists(_ context.Context, key any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, domain.ErrClosed
	}
	k, err := normalizeKey(key)
	if err != nil {
		return false, err
	}
	_, ok := s.data[k]
	return ok, nil
}

// Pop reads and deletes key, returning the prior value or ErrNotFound.
func (s *Store) Pop(_ context.Context, key any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrClosed
	}
	k, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	value, ok := s.data[k]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.data, k)
	return value, nil
}

// PopDefault is Pop, returning def instead of ErrNotFound.
func (s *Store) PopDefault(ctx context.Context, key any, def any) (any, error) {
	value, err := s.Pop(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return def, nil
	}
	return value, err
}

// Keys returns all keys.
func (s *Store) Keys(_ context.Context) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrClosed
	}
	keys := make([]any, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, denormalizeKey(k))
	}
	return keys, nil
}

// Values returns all values.
func (s *Store) Values(_ context.Context) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrClosed
	}
	values := make([]any, 0, len(s.data))
	for _, v := range s.data {
		values = append(values, v)
	}
	return values, nil
}

// Items returns all key/value pairs.
func (s *Store) Items(_ context.Context) ([]domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrClosed
	}
	items := make([]domain.Pair, 0, len(s.data))
	for k, v := range s.data {
		items = append(items, domain.Pair{Key: denormalizeKey(k), Value: v})
	}
	return items, nil
}

// Len returns the number of stored pairs.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, domain.ErrClosed
	}
	return len(s.data), nil
}

// Clear deletes every pair. The description is untouched.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	s.data = make(map[mapKey]any)
	return nil
}

// Vacuum is a no-op: there is no file to compact.
func (s *Store) Vacuum(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return domain.ErrClosed
	}
	return nil
}

// About returns the store description.
func (s *Store) About(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", domain.ErrClosed
	}
	return s.about, nil
}

// SetAbout overwrites the store description.
func (s *Store) SetAbout(_ context.Context, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}
	s.about = description
	return nil
}

// Close marks the store closed; the data is discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}
