package domain

// SerializeFunc converts a value into a storable blob. It is applied to
// every value on write when configured.
type SerializeFunc func(value any) ([]byte, error)

// DeserializeFunc converts a stored blob back into a value. It is applied
// to every value on read when configured.
//
// The two functions must be inverses of each other for round-trip
// correctness; the store does not validate this. Supplying them
// inconsistently across store instances pointing at the same file is a
// caller error.
type DeserializeFunc func(data []byte) (any, error)
