package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

func TestIndexClear(t *testing.T) {
	index := &mockIndexService{}
	useServices(t, &Services{Index: index})

	out, err := execute(t, "index", "clear")

	require.NoError(t, err)
	assert.Equal(t, 1, index.cleared)
	assert.Contains(t, out, "Index cleared.")
}

func TestIndexClear_FailureIsReported(t *testing.T) {
	index := &mockIndexService{clearErr: errors.New("connection refused")}
	useServices(t, &Services{Index: index})

	out, err := execute(t, "index", "clear")

	require.NoError(t, err)
	assert.Contains(t, out, "Failed to clear the index: connection refused")
	assert.NotContains(t, out, "Index cleared.")
}

func TestIndexPopulate_Job(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want domain.SyncJob
	}{
		{
			name: "defaults",
			args: []string{"index", "populate"},
			want: domain.SyncJob{BatchSize: domain.DefaultBatchSize, Workers: 1},
		},
		{
			name: "positional entity",
			args: []string{"index", "populate", "Article"},
			want: domain.SyncJob{Entity: "Article", BatchSize: domain.DefaultBatchSize, Workers: 1},
		},
		{
			name: "all flags",
			args: []string{"index", "populate", "--entity", "Author", "--flushsize", "50",
				"--start-offset", "10", "--workers", "2", "--yes"},
			want: domain.SyncJob{Entity: "Author", BatchSize: 50, StartOffset: 10, Workers: 2, AssumeYes: true},
		},
		{
			name: "short yes",
			args: []string{"index", "populate", "-y"},
			want: domain.SyncJob{BatchSize: domain.DefaultBatchSize, Workers: 1, AssumeYes: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &mockSyncOrchestrator{}
			useServices(t, &Services{Sync: orch})

			_, err := execute(t, tt.args...)

			require.NoError(t, err)
			require.Len(t, orch.jobs, 1)
			assert.Equal(t, tt.want, orch.jobs[0])
		})
	}
}

func TestIndexPopulate_PositionalEntityWins(t *testing.T) {
	orch := &mockSyncOrchestrator{}
	useServices(t, &Services{Sync: orch})

	out, err := execute(t, "index", "populate", "Article", "--entity", "Author")

	require.NoError(t, err)
	require.Len(t, orch.jobs, 1)
	assert.Equal(t, "Article", orch.jobs[0].Entity)
	assert.Contains(t, out, "Ignoring --entity=Author, synchronising Article")
}

func TestIndexPopulate_SettingsDefaults(t *testing.T) {
	settings := newMockSettings()
	settings.settings.Sync.BatchSize = 100
	settings.settings.Sync.Workers = 3

	t.Run("unset flags use settings", func(t *testing.T) {
		orch := &mockSyncOrchestrator{}
		useServices(t, &Services{Sync: orch, Settings: settings})

		_, err := execute(t, "index", "populate")

		require.NoError(t, err)
		assert.Equal(t, 100, orch.jobs[0].BatchSize)
		assert.Equal(t, 3, orch.jobs[0].Workers)
	})

	t.Run("flags win over settings", func(t *testing.T) {
		orch := &mockSyncOrchestrator{}
		useServices(t, &Services{Sync: orch, Settings: settings})

		_, err := execute(t, "index", "populate", "--flushsize", "7", "--workers", "1")

		require.NoError(t, err)
		assert.Equal(t, 7, orch.jobs[0].BatchSize)
		assert.Equal(t, 1, orch.jobs[0].Workers)
	})
}

func TestIndexPopulate_RejectedJobFails(t *testing.T) {
	orch := &mockSyncOrchestrator{err: domain.ErrOffsetMultipleTypes}
	useServices(t, &Services{Sync: orch})

	_, err := execute(t, "index", "populate", "--start-offset", "5")

	assert.ErrorIs(t, err, domain.ErrOffsetMultipleTypes)
}

func TestIndexPopulate_Summary(t *testing.T) {
	orch := &mockSyncOrchestrator{report: &domain.SyncReport{
		RunID: "run",
		Types: []domain.TypeReport{
			{Entity: "Article", Total: 10, Batches: 2, Indexed: 5, FailedBatches: 1},
			{Entity: "Comment", Skipped: true, SkipReason: "No entities found for Comment"},
		},
	}}
	useServices(t, &Services{Sync: orch})

	out, err := execute(t, "index", "populate")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexing \n")
	assert.Contains(t, out, "Done: 5 record(s) indexed, 1 failed batch(es), 1 type(s) skipped")
}

func TestIndexPopulate_DeprecatedSource(t *testing.T) {
	orch := &mockSyncOrchestrator{}
	useServices(t, &Services{Sync: orch})

	out, err := execute(t, "index", "populate", "--source", "mysql")

	require.NoError(t, err)
	assert.Contains(t, out, "deprecated")
	assert.Len(t, orch.jobs, 1)
}

func TestIndexStatus(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	orch := &mockSyncOrchestrator{runs: []domain.SyncRun{{
		ID:            "r1",
		Entity:        "Article",
		Total:         100,
		Indexed:       90,
		FailedBatches: 1,
		LastOffset:    100,
		StartedAt:     started,
		FinishedAt:    started.Add(1500 * time.Millisecond),
	}}}
	useServices(t, &Services{Sync: orch})

	out, err := execute(t, "index", "status", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, []int{5}, orch.limits)
	assert.Contains(t, out, "Synchronisation runs")
	assert.Contains(t, out, "Article")
	assert.Contains(t, out, "90/100")
	assert.Contains(t, out, "1.5s")
}

func TestIndexStatus_Empty(t *testing.T) {
	orch := &mockSyncOrchestrator{}
	useServices(t, &Services{Sync: orch})

	out, err := execute(t, "index", "status")

	require.NoError(t, err)
	assert.Equal(t, []int{20}, orch.limits)
	assert.Contains(t, out, "No synchronisation runs recorded.")
}

func TestIndexStatus_Error(t *testing.T) {
	orch := &mockSyncOrchestrator{historyErr: errors.New("disk full")}
	useServices(t, &Services{Sync: orch})

	_, err := execute(t, "index", "status")

	assert.ErrorContains(t, err, "disk full")
}
