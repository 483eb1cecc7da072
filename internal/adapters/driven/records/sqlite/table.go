package sqlite

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// column is one mapped struct field.
type column struct {
	name  string
	index []int
	key   bool

	// ref is the registry type the column refers to, empty for plain columns.
	ref string
}

// table describes how a Go type is read from its table.
type table struct {
	name    string
	goType  reflect.Type
	columns []column
	key     *column
	orderBy string
}

// newTable reads the db tags of t.
func newTable(typeName, tableName string, t reflect.Type) (*table, error) {
	tbl := &table{name: tableName, goType: t}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("db")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		col := column{name: strings.TrimSpace(name), index: f.Index}
		if col.name == "" {
			col.name = mapping.SnakeCase(f.Name)
		}
		for _, opt := range strings.Split(opts, ",") {
			opt = strings.TrimSpace(opt)
			switch {
			case opt == "":
			case opt == "key":
				col.key = true
			case strings.HasPrefix(opt, "ref="):
				col.ref = strings.TrimPrefix(opt, "ref=")
			default:
				return nil, &domain.MappingError{Type: typeName, Property: f.Name, Reason: fmt.Sprintf("unknown db option %q", opt)}
			}
		}
		tbl.columns = append(tbl.columns, col)
	}

	if len(tbl.columns) == 0 {
		return nil, &domain.MappingError{Type: typeName, Reason: "no db columns"}
	}

	for i := range tbl.columns {
		if tbl.columns[i].key {
			tbl.key = &tbl.columns[i]
			break
		}
	}
	if tbl.key == nil {
		for i := range tbl.columns {
			if tbl.columns[i].name == "id" && tbl.columns[i].ref == "" {
				tbl.key = &tbl.columns[i]
				break
			}
		}
	}

	// rowid keeps pages stable for tables without a declared key.
	tbl.orderBy = "rowid"
	if tbl.key != nil {
		tbl.orderBy = quoteIdent(tbl.key.name)
	}
	return tbl, nil
}

func (t *table) selectList() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = quoteIdent(c.name)
	}
	return strings.Join(names, ", ")
}

// set stores a column value into the record field.
func (c column) set(record reflect.Value, v any) error {
	field := record.FieldByIndex(c.index)

	switch val := v.(type) {
	case []byte:
		if field.Kind() == reflect.String {
			field.SetString(string(val))
			return nil
		}
	case string:
		// Multi-valued fields are stored as JSON arrays.
		if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 && strings.HasPrefix(val, "[") {
			ptr := reflect.New(field.Type())
			if err := json.Unmarshal([]byte(val), ptr.Interface()); err != nil {
				return fmt.Errorf("column %s: %w", c.name, err)
			}
			field.Set(ptr.Elem())
			return nil
		}
	}

	if err := mapping.Assign(field, v); err != nil {
		return fmt.Errorf("column %s: %w", c.name, err)
	}
	return nil
}

// quoteIdent quotes an SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
