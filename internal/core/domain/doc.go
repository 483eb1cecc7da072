// Package domain defines the core types of solrsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An index document, an ordered list of (optionally boosted) fields
//   - EntityMetadata: How one record type maps onto documents
//   - SyncJob / SyncReport / SyncRun: A synchronisation run and its outcome
//   - Settings: Endpoints, record store and pipeline defaults
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
