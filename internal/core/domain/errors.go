package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Mapping Errors.

	// ErrMapping indicates a type has no usable index mapping or a mapped
	// property could not be read or written. Fatal for the affected type.
	ErrMapping = errors.New("mapping error")

	// ErrConfiguration indicates a field selection was used against metadata
	// that cannot satisfy it, e.g. identifier-only without an identifier field.
	ErrConfiguration = errors.New("configuration error")

	// Index Errors.

	// ErrIndex indicates the index server rejected a request or could not be reached.
	ErrIndex = errors.New("index error")

	// Sync Errors.

	// ErrOffsetMultipleTypes indicates a start offset was combined with more
	// than one target type. The whole run is rejected before any work starts.
	ErrOffsetMultipleTypes = fmt.Errorf("%w: start offset requires a single entity", ErrInvalidInput)
)

// MappingError describes a mapping failure for one type and, when known, one property.
type MappingError struct {
	// Type is the registry type identifier.
	Type string

	// Property is the source property involved, empty for type-level failures.
	Property string

	// Reason is a human-readable explanation.
	Reason string
}

func (e *MappingError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("mapping %s.%s: %s", e.Type, e.Property, e.Reason)
	}
	return fmt.Sprintf("mapping %s: %s", e.Type, e.Reason)
}

// Is reports ErrMapping so callers can match with errors.Is.
func (e *MappingError) Is(target error) bool {
	return target == ErrMapping
}

// IndexError wraps a transport or server failure from the index client.
type IndexError struct {
	// Op is the facade operation that failed (index, remove, clear).
	Op string

	// Err is the low-level cause.
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the low-level cause.
func (e *IndexError) Unwrap() error {
	return e.Err
}

// Is reports ErrIndex so callers can match with errors.Is.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}
