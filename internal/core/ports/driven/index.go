package driven

import (
	"context"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// IndexClient talks to the search-engine server.
// It is the only component aware of the server's wire protocol.
type IndexClient interface {
	// Add adds or replaces documents. Changes are not visible before Commit.
	Add(ctx context.Context, docs []*domain.Document) error

	// DeleteByQuery deletes every document matching the query.
	DeleteByQuery(ctx context.Context, query string) error

	// Commit makes prior adds and deletes visible to queries.
	Commit(ctx context.Context) error

	// Query runs a query and returns the matching documents in ranking order.
	Query(ctx context.Context, query domain.SearchQuery) ([]*domain.Document, error)

	// Close releases resources.
	Close() error
}
