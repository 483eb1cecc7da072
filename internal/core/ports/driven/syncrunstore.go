package driven

import (
	"context"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// SyncRunStore persists the history of synchronisation runs.
type SyncRunStore interface {
	// Save stores a run record.
	Save(ctx context.Context, run domain.SyncRun) error

	// List returns the most recent runs first, at most limit when limit > 0.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)

	// Last returns the most recent run for an entity.
	// Returns domain.ErrNotFound when the entity was never synchronised.
	Last(ctx context.Context, entity string) (*domain.SyncRun, error)
}
