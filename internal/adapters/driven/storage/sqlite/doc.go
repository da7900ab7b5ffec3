// Package sqlite provides the durable SQLite-backed implementation of
// the KVStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Durability,
// transactions and file-level conflict handling are delegated to the
// engine; this package adds the single-table mapping, the codec hooks
// and the per-instance concurrency guard.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory and applied idempotently on open, so
// reopening an existing file never touches existing rows.
//
// # Thread Safety
//
// A Store may be shared by any number of goroutines. Every operation
// holds the store mutex for its full duration, which makes each call
// atomic against other calls on the same instance. There is no snapshot
// isolation across separate calls. Cross-process access to the same file
// is coordinated only by the engine's own file locking.
package sqlite
