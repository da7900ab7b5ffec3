package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/persistdb/kvlite/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/persistdb/kvlite/internal/core/domain"
	"github.com/persistdb/kvlite/internal/core/ports/driven"
)

// Ensure Store implements the port.
var _ driven.KVStore = (*Store)(nil)

// busyTimeoutMS is how long the engine waits on a file-level lock held
// by another process before surfacing SQLITE_BUSY.
const busyTimeoutMS = 5000

// Store is a durable key-value mapping backed by a single SQLite file.
//
// The store owns exactly one connection to its path. Every operation
// acquires the store mutex for its full duration, so each call is atomic
// with respect to other calls on the same instance. Consistency across
// separate calls is deliberately not guaranteed: a writer running between
// two enumerations may make them observe different states.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
	wal  bool

	serialize   domain.SerializeFunc
	deserialize domain.DeserializeFunc

	closed bool
}

// Option configures a Store at open time.
type Option func(*Store)

// WithWAL switches the database file to write-ahead journaling mode.
// WAL is a persistent property of the file: once enabled it stays
// enabled even when the file is later opened without this option.
func WithWAL() Option {
	return func(s *Store) { s.wal = true }
}

// WithSerializer installs fn as the value serializer, applied on every
// write. Without it, values are stored as-is and must be native scalars.
func WithSerializer(fn domain.SerializeFunc) Option {
	return func(s *Store) { s.serialize = fn }
}

// WithDeserializer installs fn as the value deserializer, applied on
// every read. It must invert the configured serializer; the store does
// not validate the round trip. Stored NULL values come back as nil
// without passing through fn.
func WithDeserializer(fn domain.DeserializeFunc) Option {
	return func(s *Store) { s.deserialize = fn }
}

// Open opens the database file at path, creating it (and any missing
// parent directories) if absent.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	dsn := path + fmt.Sprintf("?_pragma=busy_timeout(%d)", busyTimeoutMS)
	if s.wal {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The engine handle is shared by all goroutines of this instance and
	// serialized by the store mutex; a pool would break the
	// one-connection-per-path invariant.
	db.SetMaxOpenConns(1)

	s.db = db

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// With opens a store, runs fn against it and guarantees Close on every
// exit path. The error from fn wins over the error from Close.
func With(path string, fn func(*Store) error, opts ...Option) error {
	s, err := Open(path, opts...)
	if err != nil {
		return err
	}

	err = fn(s)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	return err
}

// Close releases the connection. Operations on a closed store fail with
// domain.ErrClosed. Calling Close again is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// WAL reports whether write-ahead journaling was requested at open time.
// Note that a file previously opened with WithWAL stays in WAL mode
// regardless of this flag.
func (s *Store) WAL() bool {
	return s.wal
}

// migrate applies all pending schema migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // not a versioned migration file
		}
		if version <= currentVersion {
			continue // already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Key-Value Operations ====================

// Get returns the value stored under key, deserialized if a deserializer
// is configured. A missing key fails with domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, key any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(key); err != nil {
		return nil, err
	}

	var raw any
	err := s.db.QueryRowContext(ctx, "SELECT value FROM data WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying value: %w", err)
	}

	return s.decodeValue(raw)
}

// GetDefault returns the value stored under key, or def when the key is
// absent. It never inserts def into the store.
func (s *Store) GetDefault(ctx context.Context, key any, def any) (any, error) {
	value, err := s.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return def, nil
	}
	return value, err
}

// Set stores value under key with upsert semantics: overwriting an
// existing key is not an error and leaves a single row behind.
func (s *Store) Set(ctx context.Context, key, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(key); err != nil {
		return err
	}

	stored, err := s.encodeValue(value)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO data (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, stored)
	if err != nil {
		return fmt.Errorf("storing value: %w", err)
	}
	return nil
}

// SetMany stores all pairs in one transaction with a single commit,
// which is considerably faster than repeated Set calls, each of which
// commits individually. An interrupted batch fully rolls back.
func (s *Store) SetMany(ctx context.Context, pairs []domain.Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, pair := range pairs {
		if err := domain.ValidateKey(pair.Key); err != nil {
			return err
		}
		stored, err := s.encodeValue(pair.Value)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, pair.Key, stored); err != nil {
			return fmt.Errorf("storing value: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// SetMap stores all entries of m in one transaction.
func (s *Store) SetMap(ctx context.Context, m map[string]any) error {
	pairs := make([]domain.Pair, 0, len(m))
	for key, value := range m {
		pairs = append(pairs, domain.Pair{Key: key, Value: value})
	}
	return s.SetMany(ctx, pairs)
}

// Delete removes key if present. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM data WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}
	return nil
}

// Exists reports whether key is present. It has no side effects.
func (s *Store) Exists(ctx context.Context, key any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(key); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data WHERE key = ?", key).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking key: %w", err)
	}
	return count > 0, nil
}

// Pop reads and deletes key within a single lock acquisition, returning
// the prior value or domain.ErrNotFound.
func (s *Store) Pop(ctx context.Context, key any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(key); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var raw any
	err = tx.QueryRowContext(ctx, "SELECT value FROM data WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying value: %w", err)
	}

	// Decode before deleting so a failing deserializer leaves the row
	// intact; the deferred rollback discards the transaction.
	value, err := s.decodeValue(raw)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM data WHERE key = ?", key); err != nil {
		return nil, fmt.Errorf("deleting key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

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

// ==================== Enumeration ====================

// Keys returns all keys. The result is consistent within this single
// call only; concurrent writers may change the store before a follow-up
// Values or Items call.
func (s *Store) Keys(ctx context.Context) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key FROM data")
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	var keys []any //nolint:prealloc // size unknown from query
	for rows.Next() {
		var key any
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// Values returns all values, deserialized if a deserializer is
// configured. Same consistency caveat as Keys.
func (s *Store) Values(ctx context.Context) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT value FROM data")
	if err != nil {
		return nil, fmt.Errorf("querying values: %w", err)
	}
	defer rows.Close()

	var values []any //nolint:prealloc // size unknown from query
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning value: %w", err)
		}
		value, err := s.decodeValue(raw)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating values: %w", err)
	}
	return values, nil
}

// Items returns all key/value pairs. Same consistency caveat as Keys.
func (s *Store) Items(ctx context.Context) ([]domain.Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM data")
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []domain.Pair //nolint:prealloc // size unknown from query
	for rows.Next() {
		var key, raw any
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		value, err := s.decodeValue(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.Pair{Key: key, Value: value})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// Len returns the number of stored pairs.
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, domain.ErrClosed
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM data").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return count, nil
}

// ==================== Maintenance ====================

// Clear deletes every pair from the data table. The about description
// is untouched.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM data"); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}
	return nil
}

// Wipe is an alias for Clear.
func (s *Store) Wipe(ctx context.Context) error {
	return s.Clear(ctx)
}

// Vacuum asks the engine to reclaim space freed by deletions and
// overwrites. May be slow on large stores.
func (s *Store) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuuming database: %w", err)
	}
	return nil
}

// Compact is an alias for Vacuum.
func (s *Store) Compact(ctx context.Context) error {
	return s.Vacuum(ctx)
}

// ==================== About ====================

// About returns the free-text description of the store, or "" if it was
// never set.
func (s *Store) About(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", domain.ErrClosed
	}

	var description sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT description FROM about WHERE id = 1").Scan(&description)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying description: %w", err)
	}
	return description.String, nil
}

// SetAbout overwrites the store description.
func (s *Store) SetAbout(ctx context.Context, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO about (id, description) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET description = excluded.description
	`, description)
	if err != nil {
		return fmt.Errorf("storing description: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// ready checks the closed flag and key type. Caller must hold the lock.
func (s *Store) ready(key any) error {
	if s.closed {
		return domain.ErrClosed
	}
	return domain.ValidateKey(key)
}

// encodeValue runs the configured serializer, if any.
func (s *Store) encodeValue(value any) (any, error) {
	if s.serialize == nil {
		return value, nil
	}
	stored, err := s.serialize(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSerialize, err)
	}
	return stored, nil
}

// decodeValue runs the configured deserializer, if any, on a scanned
// value. Stored NULLs pass through as nil.
func (s *Store) decodeValue(raw any) (any, error) {
	if s.deserialize == nil || raw == nil {
		return raw, nil
	}

	var blob []byte
	switch v := raw.(type) {
	case []byte:
		blob = v
	case string:
		blob = []byte(v)
	default:
		return nil, fmt.Errorf("%w: stored value is %T, not a blob", domain.ErrDeserialize, raw)
	}

	value, err := s.deserialize(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDeserialize, err)
	}
	return value, nil
}
