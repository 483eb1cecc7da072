// Package memory serves records held in process memory. It backs tests and
// the "memory" source driver.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
)

// Ensure the types implement the interfaces.
var (
	_ driven.RecordSource     = (*Source)(nil)
	_ driven.RecordRepository = (*Repository)(nil)
)

// Page records one FindPage call.
type Page struct {
	Offset int
	Limit  int
}

// Repository is an in-memory record repository over a fixed slice.
type Repository struct {
	mu      sync.Mutex
	records []any
	pages   []Page

	// CountErr makes CountAll fail.
	CountErr error

	// FailPages makes FindPage fail for the listed offsets.
	FailPages map[int]error
}

// NewRepository creates a repository holding records in order.
func NewRepository(records ...any) *Repository {
	return &Repository{
		records:   records,
		FailPages: make(map[int]error),
	}
}

// CountAll returns the number of records.
func (r *Repository) CountAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CountErr != nil {
		return 0, r.CountErr
	}
	return len(r.records), nil
}

// FindPage returns at most limit records starting at offset.
func (r *Repository) FindPage(_ context.Context, offset, limit int) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, Page{Offset: offset, Limit: limit})

	if err, ok := r.FailPages[offset]; ok {
		return nil, err
	}
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d limit %d", domain.ErrInvalidInput, offset, limit)
	}
	if offset >= len(r.records) {
		return []any{}, nil
	}
	end := offset + limit
	if end > len(r.records) {
		end = len(r.records)
	}
	page := make([]any, end-offset)
	copy(page, r.records[offset:end])
	return page, nil
}

// Pages returns the FindPage calls made so far.
func (r *Repository) Pages() []Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Page, len(r.pages))
	copy(out, r.pages)
	return out
}

// Source resolves in-memory repositories by type name.
type Source struct {
	mu      sync.Mutex
	repos   map[string]driven.RecordRepository
	lookups int
	closed  bool
}

// NewSource creates an empty record source.
func NewSource() *Source {
	return &Source{
		repos: make(map[string]driven.RecordRepository),
	}
}

// Put registers the repository of a type.
func (s *Source) Put(typeName string, repo driven.RecordRepository) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repos[typeName] = repo
}

// Repository returns the repository of typeName.
func (s *Source) Repository(typeName string) (driven.RecordRepository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	repo, ok := s.repos[typeName]
	if !ok {
		return nil, fmt.Errorf("repository %s: %w", typeName, domain.ErrNotFound)
	}
	return repo, nil
}

// Lookups returns the number of Repository calls.
func (s *Source) Lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookups
}

// Close marks the source closed.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
