package mapping

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/logger"
)

// LoadStatus classifies the outcome of loading a type's metadata.
type LoadStatus int

const (
	// LoadOK means the metadata is usable.
	LoadOK LoadStatus = iota

	// LoadNotIndexable means the type carries no index mapping or is unknown.
	LoadNotIndexable

	// LoadInvalid means the type declares a mapping that cannot be used.
	LoadInvalid
)

// String returns the status name.
func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadNotIndexable:
		return "not indexable"
	case LoadInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// LoadResult is the outcome of loading a type's metadata.
// Metadata is set for LoadOK; Err explains the other statuses.
type LoadResult struct {
	Status   LoadStatus
	Metadata *domain.EntityMetadata
	Err      error
}

// Registry holds the known record types and their parsed metadata.
// It is safe for concurrent use; each type is parsed at most once.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
	names map[reflect.Type]string
	order []string
	cache map[string]LoadResult

	singleRun singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]reflect.Type),
		names: make(map[reflect.Type]string),
		cache: make(map[string]LoadResult),
	}
}

// Register makes a record type known under name. prototype is a value or
// pointer of the type. Registration order is the listing order.
func (r *Registry) Register(name string, prototype any) error {
	if name == "" {
		return fmt.Errorf("%w: empty type name", domain.ErrInvalidInput)
	}
	t := reflect.TypeOf(prototype)
	if t == nil {
		return fmt.Errorf("%w: nil prototype for %s", domain.ErrInvalidInput, name)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[name]; ok {
		if existing == t {
			return nil
		}
		return fmt.Errorf("%w: type name %q already registered for %s", domain.ErrInvalidInput, name, existing)
	}
	if other, ok := r.names[t]; ok {
		return fmt.Errorf("%w: %s already registered as %q", domain.ErrInvalidInput, t, other)
	}

	r.types[name] = t
	r.names[t] = name
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register that panics on error. Intended for static catalogs.
func (r *Registry) MustRegister(name string, prototype any) {
	if err := r.Register(name, prototype); err != nil {
		panic(err)
	}
}

// Types returns every registered type name in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// TypeOf returns the registered name of a record's type.
func (r *Registry) TypeOf(record any) (string, bool) {
	t := reflect.TypeOf(record)
	if t == nil {
		return "", false
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[t]
	return name, ok
}

// GoType returns the Go type registered under name.
func (r *Registry) GoType(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Load returns the metadata of a type, parsing it on first use.
// Concurrent first loads of the same type share a single parse.
func (r *Registry) Load(name string) LoadResult {
	r.mu.RLock()
	res, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return res
	}

	v, _, _ := r.singleRun.Do(name, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.cache[name]
		t, known := r.types[name]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}
		if !known {
			// Unknown names are not cached: the type may be registered later.
			return LoadResult{Status: LoadNotIndexable, Err: &domain.MappingError{
				Type:   name,
				Reason: "type is not registered",
			}}, nil
		}

		result := parseMetadata(name, t, r.GoType)
		logger.Debug("Loaded metadata for %s: %s", name, result.Status)

		r.mu.Lock()
		r.cache[name] = result
		r.mu.Unlock()
		return result, nil
	})
	return v.(LoadResult)
}

// LoadMetadata returns the metadata of a type or a domain.ErrMapping error
// when the type is unknown, carries no mapping, or its mapping is invalid.
func (r *Registry) LoadMetadata(name string) (*domain.EntityMetadata, error) {
	res := r.Load(name)
	if res.Status != LoadOK {
		return nil, res.Err
	}
	return res.Metadata, nil
}

// IndexableTypes returns the registered types whose metadata loads and
// which are not nested-only, in registration order.
func (r *Registry) IndexableTypes() []string {
	var out []string
	for _, name := range r.Types() {
		res := r.Load(name)
		if res.Status != LoadOK {
			logger.Debug("Skipping %s: %v", name, res.Err)
			continue
		}
		if res.Metadata.Nested {
			continue
		}
		out = append(out, name)
	}
	return out
}

// newRecord allocates a new *T for a registered type.
func (r *Registry) newRecord(name string) (reflect.Value, error) {
	t, ok := r.GoType(name)
	if !ok {
		return reflect.Value{}, &domain.MappingError{Type: name, Reason: "type is not registered"}
	}
	return reflect.New(t), nil
}
