// Package domain defines the core entities for kvlite.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Pair: A key/value pair bound for the data table
//   - SerializeFunc / DeserializeFunc: Caller-supplied value codecs
//   - The error taxonomy shared by all storage adapters
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
