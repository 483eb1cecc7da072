package mapping

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

var timeType = reflect.TypeOf(time.Time{})

// documentTag holds the parsed options of the Entity marker tag.
type documentTag struct {
	name     string
	boost    float64
	hasBoost bool
	nested   bool
}

// fieldTag holds the parsed options of a field tag.
type fieldTag struct {
	name       string
	boost      float64
	identifier bool
	nestedType string
}

func parseDocumentTag(tag string) (documentTag, error) {
	var dt documentTag
	for _, part := range splitTag(tag) {
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "document":
			dt.name = value
		case "boost":
			b, err := parseBoost(value, hasValue)
			if err != nil {
				return dt, err
			}
			dt.boost, dt.hasBoost = b, true
		case "nested":
			dt.nested = true
		default:
			return dt, fmt.Errorf("unknown document option %q", key)
		}
	}
	return dt, nil
}

func parseFieldTag(tag, property string) (fieldTag, error) {
	parts := strings.Split(tag, ",")
	ft := fieldTag{name: strings.TrimSpace(parts[0])}
	if ft.name == "" {
		ft.name = strings.ToLower(property)
	}
	for _, part := range splitTag(strings.Join(parts[1:], ",")) {
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "id":
			ft.identifier = true
		case "boost":
			b, err := parseBoost(value, hasValue)
			if err != nil {
				return ft, err
			}
			ft.boost = b
		case "nested":
			if value == "" {
				return ft, fmt.Errorf("nested option needs a type")
			}
			ft.nestedType = value
		default:
			return ft, fmt.Errorf("unknown field option %q", key)
		}
	}
	return ft, nil
}

func splitTag(tag string) []string {
	var parts []string
	for _, p := range strings.Split(tag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func parseBoost(value string, hasValue bool) (float64, error) {
	if !hasValue {
		return 0, fmt.Errorf("boost needs a value")
	}
	b, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid boost %q", value)
	}
	if b < 0 {
		return 0, fmt.Errorf("boost must not be negative, got %v", b)
	}
	return b, nil
}

// nestedElem returns the struct type embedded by a nested field and whether
// the field is a collection. Accepted shapes: T, *T, []T, []*T.
func nestedElem(t reflect.Type) (reflect.Type, bool, bool) {
	multi := false
	if t.Kind() == reflect.Slice {
		multi = true
		t = t.Elem()
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil, false, false
	}
	return t, multi, true
}

// parseMetadata builds the metadata of t from its struct tags.
// lookup resolves registered type identifiers to Go types.
func parseMetadata(name string, t reflect.Type, lookup func(string) (reflect.Type, bool)) LoadResult {
	invalid := func(property, format string, args ...any) LoadResult {
		return LoadResult{Status: LoadInvalid, Err: &domain.MappingError{
			Type:     name,
			Property: property,
			Reason:   fmt.Sprintf(format, args...),
		}}
	}

	if t.Kind() != reflect.Struct {
		return LoadResult{Status: LoadNotIndexable, Err: &domain.MappingError{Type: name, Reason: "not a struct type"}}
	}

	marker, ok := findMarker(t)
	if !ok {
		return LoadResult{Status: LoadNotIndexable, Err: &domain.MappingError{Type: name, Reason: "no index mapping declared"}}
	}

	dt, err := parseDocumentTag(marker.Tag.Get(TagName))
	if err != nil {
		return invalid("", "%v", err)
	}
	if dt.name == "" {
		if !dt.nested {
			return invalid("", "no document name declared")
		}
		dt.name = strings.ToLower(name)
	}

	meta := &domain.EntityMetadata{
		TypeName:     name,
		DocumentName: dt.name,
		Boost:        dt.boost,
		HasBoost:     dt.hasBoost,
		Nested:       dt.nested,
	}

	seen := make(map[string]string)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type == entityType {
			continue
		}
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}

		ft, err := parseFieldTag(tag, sf.Name)
		if err != nil {
			return invalid(sf.Name, "%v", err)
		}
		if other, dup := seen[ft.name]; dup {
			return invalid(sf.Name, "document field %q already mapped by %s", ft.name, other)
		}
		seen[ft.name] = sf.Name

		field := domain.FieldMetadata{
			DocumentField: ft.name,
			Property:      sf.Name,
			Boost:         ft.boost,
			Identifier:    ft.identifier,
			NestedType:    ft.nestedType,
		}

		if field.IsNested() {
			if field.Identifier {
				return invalid(sf.Name, "a nested field cannot be the identifier")
			}
			elem, multi, ok := nestedElem(sf.Type)
			if !ok {
				return invalid(sf.Name, "nested field must be a struct, pointer or slice of them, got %s", sf.Type)
			}
			registered, ok := lookup(ft.nestedType)
			if !ok {
				return invalid(sf.Name, "nested type %q is not registered", ft.nestedType)
			}
			if registered != elem {
				return invalid(sf.Name, "nested type %q is %s, field holds %s", ft.nestedType, registered, elem)
			}
			field.Multi = multi
		}

		meta.Fields = append(meta.Fields, field)
	}

	return LoadResult{Status: LoadOK, Metadata: meta}
}

func findMarker(t reflect.Type) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		if sf := t.Field(i); sf.Type == entityType {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}
