package driving

import (
	"context"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// Reporter receives human-readable progress messages.
// *cobra.Command satisfies it.
type Reporter interface {
	Printf(format string, args ...any)
}

// SyncOrchestrator populates the index from the record repositories.
type SyncOrchestrator interface {
	// Populate runs a synchronisation job. Per-type and per-batch failures are
	// reported and recorded in the report; the returned error is reserved for
	// requests rejected before any work starts.
	Populate(ctx context.Context, job domain.SyncJob, out Reporter) (*domain.SyncReport, error)

	// History returns recent synchronisation runs, newest first.
	History(ctx context.Context, limit int) ([]domain.SyncRun, error)
}
