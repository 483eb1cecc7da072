// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - IndexClient: Talks to the search-engine server (Solr over HTTP, or in-memory)
//   - RecordSource / RecordRepository: Pages records out of the primary data store
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Confirmer: Operator confirmation. Without it, oversized jobs are declined.
//   - SyncRunStore: Run history. Without it, runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
