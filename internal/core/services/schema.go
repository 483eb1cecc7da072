package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
	"github.com/custodia-labs/solrsync/internal/logger"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// Ensure SchemaService implements the interface.
var _ driving.SchemaService = (*SchemaService)(nil)

// SchemaService describes the index mapping of every registered type.
type SchemaService struct {
	registry *mapping.Registry
}

// NewSchemaService creates a new schema service.
func NewSchemaService(registry *mapping.Registry) *SchemaService {
	return &SchemaService{registry: registry}
}

// Describe returns an entry per indexable type in registration order.
// Types with invalid mappings are left out and their errors joined into
// the returned error; the entries of the valid types are still returned.
func (s *SchemaService) Describe(_ context.Context) ([]domain.SchemaEntry, error) {
	var (
		entries []domain.SchemaEntry
		errs    []error
	)

	for _, name := range s.registry.Types() {
		res := s.registry.Load(name)
		switch res.Status {
		case mapping.LoadNotIndexable:
			logger.Debug("Schema: %s is not indexable", name)
			continue
		case mapping.LoadInvalid:
			errs = append(errs, res.Err)
			continue
		}
		if res.Metadata.Nested {
			continue
		}

		entry := domain.SchemaEntry{Metadata: res.Metadata}
		for _, field := range res.Metadata.NestedFields() {
			nested, err := s.registry.LoadMetadata(field.NestedType)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			entry.Nested = append(entry.Nested, domain.NestedSchema{Field: field, Metadata: nested})
		}
		entries = append(entries, entry)
	}

	return entries, errors.Join(errs...)
}
