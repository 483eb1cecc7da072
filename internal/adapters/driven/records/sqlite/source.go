package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/logger"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// maxRefDepth bounds how deep relations are followed.
const maxRefDepth = 4

// Ensure Source implements the interface.
var _ driven.RecordSource = (*Source)(nil)

// Ensure Repository implements the interface.
var _ driven.RecordRepository = (*Repository)(nil)

// Config holds configuration for the SQLite record source.
type Config struct {
	// DSN is the database file path or a file: URI.
	DSN string

	// Tables maps registry type names to table names. Unlisted types use the
	// snake_case form of the type name.
	Tables map[string]string
}

// Source opens repositories over the tables of one database.
type Source struct {
	db       *sql.DB
	registry *mapping.Registry
	names    map[string]string

	mu     sync.Mutex
	tables map[string]*table
}

// NewSource opens the database at cfg.DSN.
func NewSource(ctx context.Context, cfg Config, registry *mapping.Registry) (*Source, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: sqlite source needs a dsn", domain.ErrConfiguration)
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	names := make(map[string]string, len(cfg.Tables))
	for k, v := range cfg.Tables {
		names[k] = v
	}

	return &Source{
		db:       db,
		registry: registry,
		names:    names,
		tables:   make(map[string]*table),
	}, nil
}

// Repository returns the repository of typeName. The type must be
// registered and its table must exist.
func (s *Source) Repository(typeName string) (driven.RecordRepository, error) {
	tbl, err := s.table(typeName)
	if err != nil {
		return nil, err
	}

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?", tbl.name,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("table %s for %s: %w", tbl.name, typeName, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up table %s: %w", tbl.name, err)
	}

	return &Repository{source: s, table: tbl}, nil
}

// Close closes the database connection.
func (s *Source) Close() error {
	return s.db.Close()
}

func (s *Source) table(typeName string) (*table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tbl, ok := s.tables[typeName]; ok {
		return tbl, nil
	}

	goType, ok := s.registry.GoType(typeName)
	if !ok {
		return nil, fmt.Errorf("type %s: %w", typeName, domain.ErrNotFound)
	}
	name := s.names[typeName]
	if name == "" {
		name = mapping.SnakeCase(typeName)
	}

	tbl, err := newTable(typeName, name, goType)
	if err != nil {
		return nil, err
	}
	s.tables[typeName] = tbl
	return tbl, nil
}

// load runs query against tbl and resolves the relations of the rows.
func (s *Source) load(ctx context.Context, tbl *table, depth int, query string, args ...any) ([]reflect.Value, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tbl.name, err)
	}
	defer rows.Close()

	var (
		records []reflect.Value
		refKeys = make(map[int][]any)
	)
	for rows.Next() {
		values := make([]any, len(tbl.columns))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", tbl.name, err)
		}

		record := reflect.New(tbl.goType)
		for i, c := range tbl.columns {
			if c.ref != "" {
				refKeys[i] = append(refKeys[i], values[i])
				continue
			}
			if err := c.set(record.Elem(), values[i]); err != nil {
				return nil, fmt.Errorf("%s: %w", tbl.name, err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", tbl.name, err)
	}
	rows.Close()

	for i, keys := range refKeys {
		if err := s.resolve(ctx, tbl.columns[i], records, keys, depth); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", tbl.name, tbl.columns[i].name, err)
		}
	}
	return records, nil
}

// resolve loads the records referenced by keys and stores them in the
// relation field of the matching record. Dangling keys leave the field unset.
func (s *Source) resolve(ctx context.Context, c column, records []reflect.Value, keys []any, depth int) error {
	if depth >= maxRefDepth {
		logger.Debug("Not following %s: relation depth %d reached", c.ref, depth)
		return nil
	}

	ref, err := s.table(c.ref)
	if err != nil {
		return err
	}
	if ref.key == nil {
		return fmt.Errorf("%w: %s has no key column", domain.ErrConfiguration, c.ref)
	}

	seen := make(map[string]bool)
	var distinct []any
	for _, k := range keys {
		if k == nil {
			continue
		}
		id := fmt.Sprint(k)
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, k)
		}
	}
	if len(distinct) == 0 {
		return nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		ref.selectList(), quoteIdent(ref.name), quoteIdent(ref.key.name),
		strings.TrimSuffix(strings.Repeat("?, ", len(distinct)), ", "))
	loaded, err := s.load(ctx, ref, depth+1, query, distinct...)
	if err != nil {
		return err
	}

	byKey := make(map[string]reflect.Value, len(loaded))
	for _, r := range loaded {
		byKey[fmt.Sprint(r.Elem().FieldByIndex(ref.key.index).Interface())] = r
	}

	for i, record := range records {
		if keys[i] == nil {
			continue
		}
		target, ok := byKey[fmt.Sprint(keys[i])]
		if !ok {
			continue
		}

		field := record.Elem().FieldByIndex(c.index)
		switch {
		case field.Type() == target.Type():
			field.Set(target)
		case field.Type() == target.Type().Elem():
			field.Set(target.Elem())
		default:
			return fmt.Errorf("%w: cannot store %s in %s", domain.ErrConfiguration, target.Type(), field.Type())
		}
	}
	return nil
}

// Repository reads the records of one type.
type Repository struct {
	source *Source
	table  *table
}

// CountAll returns the number of rows in the table.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM " + quoteIdent(r.table.name)
	if err := r.source.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.table.name, err)
	}
	return n, nil
}

// FindPage returns at most limit records starting at offset, ordered by
// the key column or the rowid.
func (r *Repository) FindPage(ctx context.Context, offset, limit int) ([]any, error) {
	if limit <= 0 {
		return []any{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT ? OFFSET ?",
		r.table.selectList(), quoteIdent(r.table.name), r.table.orderBy)
	records, err := r.source.load(ctx, r.table, 0, query, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(records))
	for i, rec := range records {
		out[i] = rec.Interface()
	}
	return out, nil
}
