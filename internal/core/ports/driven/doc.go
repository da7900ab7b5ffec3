// Package driven defines the interfaces that callers use to reach
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// The CLI adapter and downstream tools depend on these interfaces, and
// storage adapters implement them.
//
// # Interfaces
//
//   - KVStore: the durable key-value mapping (sqlite and memory adapters)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
