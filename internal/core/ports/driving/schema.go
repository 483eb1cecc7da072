package driving

import (
	"context"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// SchemaService reports the registry contents. It never mutates anything.
type SchemaService interface {
	// Describe returns every indexable type with its nested types.
	Describe(ctx context.Context) ([]domain.SchemaEntry, error)
}
