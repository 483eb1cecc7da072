package driven

import "context"

// RecordRepository reads the records of one type from the primary data store.
// Pages must follow a stable order so that consecutive pages over an
// unchanged dataset neither skip nor repeat records.
type RecordRepository interface {
	// CountAll returns the number of records of the type.
	CountAll(ctx context.Context) (int, error)

	// FindPage returns at most limit records starting at offset.
	// Records are pointers to the type registered in the mapping registry.
	FindPage(ctx context.Context, offset, limit int) ([]any, error)
}

// RecordSource resolves the repository of a type.
type RecordSource interface {
	// Repository returns the repository for typeName.
	// Returns domain.ErrNotFound when the type has no repository.
	Repository(typeName string) (RecordRepository, error)

	// Close releases the connection to the data store.
	Close() error
}
