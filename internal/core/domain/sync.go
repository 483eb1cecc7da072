package domain

import "time"

// DefaultBatchSize is the number of records pushed to the index per batch.
const DefaultBatchSize = 500

// DefaultConfirmThreshold is the record count from which a type needs
// explicit operator confirmation before it is synchronised.
const DefaultConfirmThreshold = 500000

// SyncJob describes one invocation of the synchronisation pipeline.
type SyncJob struct {
	// Entity restricts the run to a single type. Empty means every indexable type.
	Entity string

	// BatchSize is the page size used against the repository.
	BatchSize int

	// StartOffset skips the first records of the (single) target type.
	StartOffset int

	// Workers is the number of types synchronised concurrently.
	Workers int

	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
}

// Normalise fills unset values with defaults.
func (j SyncJob) Normalise() SyncJob {
	if j.BatchSize <= 0 {
		j.BatchSize = DefaultBatchSize
	}
	if j.StartOffset < 0 {
		j.StartOffset = 0
	}
	if j.Workers <= 0 {
		j.Workers = 1
	}
	return j
}

// Batches returns the number of batches needed for total records.
func (j SyncJob) Batches(total int) int {
	if total <= 0 || j.BatchSize <= 0 {
		return 0
	}
	return (total + j.BatchSize - 1) / j.BatchSize
}

// SyncReport summarises a pipeline run.
type SyncReport struct {
	// RunID identifies the run.
	RunID string

	// Types holds one report per targeted type, in target order.
	Types []TypeReport
}

// Failed returns the number of failed batches across all types.
func (r *SyncReport) Failed() int {
	n := 0
	for _, t := range r.Types {
		n += t.FailedBatches
	}
	return n
}

// TypeReport summarises the synchronisation of one type.
type TypeReport struct {
	Entity        string
	Total         int
	Batches       int
	FailedBatches int
	Indexed       int

	// Skipped is set when the type was not processed; SkipReason says why.
	Skipped    bool
	SkipReason string
}

// SyncRun is the persisted record of one type's synchronisation.
type SyncRun struct {
	// ID uniquely identifies this record.
	ID string

	// RunID groups the types of one invocation.
	RunID string

	Entity        string
	StartOffset   int
	Total         int
	Indexed       int
	FailedBatches int

	// LastOffset is the offset after the last attempted batch.
	LastOffset int

	StartedAt  time.Time
	FinishedAt time.Time
}
