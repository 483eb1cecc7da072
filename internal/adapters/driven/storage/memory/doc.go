// Package memory provides in-process stores: configuration, the search
// index and the sync run history. The index backs the "memory://" endpoint
// and the service tests.
package memory
