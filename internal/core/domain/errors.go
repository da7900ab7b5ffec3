package domain

import "errors"

// Domain errors represent store-contract failures.
// These are distinct from engine-level (I/O, disk, corruption) errors,
// which adapters wrap and propagate unchanged in meaning.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("key not found")

	// ErrClosed indicates an operation was invoked after Close.
	// A closed store is never silently reopened.
	ErrClosed = errors.New("store is closed")

	// ErrUnsupportedKey indicates a key is not a native scalar type.
	// Keys must be text, binary, integer or floating-point; there is
	// no key serializer indirection.
	ErrUnsupportedKey = errors.New("unsupported key type")

	// ErrSerialize indicates the caller-supplied serialize function failed.
	ErrSerialize = errors.New("serialize failed")

	// ErrDeserialize indicates the caller-supplied deserialize function
	// failed or the stored value is not a blob it can accept.
	ErrDeserialize = errors.New("deserialize failed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
