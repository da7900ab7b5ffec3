package domain

import "fmt"

// Pair is a single key/value pair bound for the data table.
type Pair struct {
	Key   any
	Value any
}

// ValidateKey reports whether key is one of the storage engine's native
// scalar types. Anything else fails with ErrUnsupportedKey before the
// engine is touched.
func ValidateKey(key any) error {
	switch key.(type) {
	case string, []byte, int, int32, int64, float32, float64:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
}
