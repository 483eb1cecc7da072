package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
)

// syncRunStore implements driven.SyncRunStore.
type syncRunStore struct {
	store *Store
}

var _ driven.SyncRunStore = (*syncRunStore)(nil)

const syncRunColumns = `id, run_id, entity, start_offset, total, indexed,
	failed_batches, last_offset, started_at, finished_at`

// Save stores or updates a run record.
func (s *syncRunStore) Save(ctx context.Context, run domain.SyncRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: sync run without id", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (`+syncRunColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			entity = excluded.entity,
			start_offset = excluded.start_offset,
			total = excluded.total,
			indexed = excluded.indexed,
			failed_batches = excluded.failed_batches,
			last_offset = excluded.last_offset,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, run.ID, run.RunID, run.Entity, run.StartOffset, run.Total, run.Indexed,
		run.FailedBatches, run.LastOffset, formatTime(run.StartedAt), formatTime(run.FinishedAt))

	if err != nil {
		return fmt.Errorf("saving sync run: %w", err)
	}
	return nil
}

// List returns the most recent runs first, at most limit when limit > 0.
func (s *syncRunStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.SyncRun{}
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync runs: %w", err)
	}
	return runs, nil
}

// Last returns the most recent run for an entity.
func (s *syncRunStore) Last(ctx context.Context, entity string) (*domain.SyncRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+syncRunColumns+` FROM sync_runs
		WHERE entity = ? ORDER BY started_at DESC LIMIT 1
	`, entity)

	run, err := scanSyncRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return run, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(row rowScanner) (*domain.SyncRun, error) {
	var (
		run               domain.SyncRun
		started, finished string
	)
	err := row.Scan(&run.ID, &run.RunID, &run.Entity, &run.StartOffset, &run.Total, &run.Indexed,
		&run.FailedBatches, &run.LastOffset, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}

	if run.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}
	return &run, nil
}

// Times are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}
