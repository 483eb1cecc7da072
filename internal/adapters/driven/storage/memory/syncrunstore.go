package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
)

// Ensure SyncRunStore implements the interface.
var _ driven.SyncRunStore = (*SyncRunStore)(nil)

// SyncRunStore is an in-memory implementation of driven.SyncRunStore.
type SyncRunStore struct {
	mu   sync.RWMutex
	runs []domain.SyncRun
}

// NewSyncRunStore creates a new in-memory sync run store.
func NewSyncRunStore() *SyncRunStore {
	return &SyncRunStore{}
}

// Save stores a run record, replacing any record with the same ID.
func (s *SyncRunStore) Save(_ context.Context, run domain.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			s.runs[i] = run
			return nil
		}
	}
	s.runs = append(s.runs, run)
	return nil
}

// List returns runs newest first.
func (s *SyncRunStore) List(_ context.Context, limit int) ([]domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SyncRun, len(s.runs))
	copy(out, s.runs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Last returns the most recent run of an entity.
func (s *SyncRunStore) Last(ctx context.Context, entity string) (*domain.SyncRun, error) {
	runs, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].Entity == entity {
			return &runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
