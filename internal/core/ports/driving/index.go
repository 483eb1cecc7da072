package driving

import (
	"context"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// IndexService is the single point of contact with the search index.
// Every mutating call commits before returning.
type IndexService interface {
	// Index maps a record with every field and adds it to the index.
	Index(ctx context.Context, record any) error

	// SynchronizeIndex indexes records in one add and one commit.
	SynchronizeIndex(ctx context.Context, records ...any) error

	// Remove deletes a record's document by its identifier field(s).
	Remove(ctx context.Context, record any) error

	// ClearIndex deletes every document in the index.
	ClearIndex(ctx context.Context) error

	// Query returns the hits mapped to query.Entity, in ranking order.
	// Failures are logged and yield an empty result.
	Query(ctx context.Context, query domain.SearchQuery) []any

	// Close releases the connection to the index server.
	Close() error
}
