package mapping

import (
	"fmt"
	"reflect"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// maxNestingDepth bounds how deep nested records are converted. A record
// graph that cycles through a nested field fails instead of recursing forever.
const maxNestingDepth = 16

// Mapper converts records to documents and back using registry metadata.
// It holds no per-call state and is safe for concurrent use.
type Mapper struct {
	registry *Registry
}

// NewMapper creates a mapper over a registry.
func NewMapper(registry *Registry) *Mapper {
	return &Mapper{registry: registry}
}

// Metadata returns the metadata of a record's type.
func (m *Mapper) Metadata(record any) (*domain.EntityMetadata, error) {
	name, ok := m.registry.TypeOf(record)
	if !ok {
		return nil, &domain.MappingError{Type: fmt.Sprintf("%T", record), Reason: "type is not registered"}
	}
	return m.registry.LoadMetadata(name)
}

// ToDocument converts a record into a document holding the fields chosen by sel.
// Nested records are always converted with every field.
func (m *Mapper) ToDocument(record any, sel domain.FieldSelection) (*domain.Document, error) {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, &domain.MappingError{Type: fmt.Sprintf("%T", record), Reason: "nil record"}
		}
		v = v.Elem()
	}

	meta, err := m.Metadata(record)
	if err != nil {
		return nil, err
	}
	return m.toDocument(v, meta, sel, 0)
}

func (m *Mapper) toDocument(v reflect.Value, meta *domain.EntityMetadata, sel domain.FieldSelection, depth int) (*domain.Document, error) {
	if depth > maxNestingDepth {
		return nil, &domain.MappingError{Type: meta.TypeName, Reason: fmt.Sprintf("nesting deeper than %d levels", maxNestingDepth)}
	}

	names, err := sel.Select(meta)
	if err != nil {
		return nil, err
	}

	doc := domain.NewDocument()
	if meta.HasBoost {
		doc.Boost, doc.HasBoost = meta.Boost, true
	}

	for _, name := range names {
		field, _ := meta.Field(name)
		fv, err := readProperty(v, meta.TypeName, field.Property)
		if err != nil {
			return nil, err
		}

		if field.IsNested() {
			value, ok, err := m.nestedValue(fv, field, depth+1)
			if err != nil {
				return nil, err
			}
			if ok {
				doc.Set(name, value)
			}
			continue
		}

		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				// A partial identifier would match more than the record.
				if sel == domain.SelectIdentifier {
					return nil, &domain.MappingError{Type: meta.TypeName, Property: field.Property, Reason: "identifier has no value"}
				}
				continue
			}
			fv = fv.Elem()
		}
		doc.SetBoosted(name, fv.Interface(), field.Boost)
	}
	return doc, nil
}

// nestedValue converts the record(s) held by a nested field. ok is false
// when the field holds nothing, so the document field stays absent.
func (m *Mapper) nestedValue(fv reflect.Value, field domain.FieldMetadata, depth int) (any, bool, error) {
	meta, err := m.registry.LoadMetadata(field.NestedType)
	if err != nil {
		return nil, false, err
	}

	if !field.Multi {
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				return nil, false, nil
			}
			fv = fv.Elem()
		}
		doc, err := m.toDocument(fv, meta, domain.SelectAll, depth)
		if err != nil {
			return nil, false, err
		}
		return doc, true, nil
	}

	if fv.Len() == 0 {
		return nil, false, nil
	}
	docs := make([]*domain.Document, 0, fv.Len())
	for i := 0; i < fv.Len(); i++ {
		item := fv.Index(i)
		if item.Kind() == reflect.Ptr {
			if item.IsNil() {
				continue
			}
			item = item.Elem()
		}
		doc, err := m.toDocument(item, meta, domain.SelectAll, depth)
		if err != nil {
			return nil, false, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, false, nil
	}
	return docs, true, nil
}

func readProperty(v reflect.Value, typeName, property string) (reflect.Value, error) {
	fv := v.FieldByName(property)
	if !fv.IsValid() {
		return reflect.Value{}, &domain.MappingError{Type: typeName, Property: property, Reason: "property not found"}
	}
	if !fv.CanInterface() {
		return reflect.Value{}, &domain.MappingError{Type: typeName, Property: property, Reason: "property is not readable"}
	}
	return fv, nil
}

// ToEntity builds a new record of typeName from a document and returns a
// pointer to it. Document fields without metadata are ignored.
func (m *Mapper) ToEntity(doc *domain.Document, typeName string) (any, error) {
	meta, err := m.registry.LoadMetadata(typeName)
	if err != nil {
		return nil, err
	}
	ptr, err := m.registry.newRecord(typeName)
	if err != nil {
		return nil, err
	}
	if err := m.fill(ptr.Elem(), doc, meta); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

func (m *Mapper) fill(v reflect.Value, doc *domain.Document, meta *domain.EntityMetadata) error {
	for _, f := range doc.Fields() {
		field, ok := meta.Field(f.Name)
		if !ok {
			continue
		}
		target := v.FieldByName(field.Property)
		if !target.IsValid() {
			return &domain.MappingError{Type: meta.TypeName, Property: field.Property, Reason: "property not found"}
		}
		if !target.CanSet() {
			return &domain.MappingError{Type: meta.TypeName, Property: field.Property, Reason: "property is not writable"}
		}

		if field.IsNested() {
			if err := m.fillNested(target, f.Value, field, meta.TypeName); err != nil {
				return err
			}
			continue
		}

		if err := assign(target, f.Value); err != nil {
			return &domain.MappingError{Type: meta.TypeName, Property: field.Property, Reason: err.Error()}
		}
	}
	return nil
}

func (m *Mapper) fillNested(target reflect.Value, value any, field domain.FieldMetadata, owner string) error {
	if value == nil {
		return nil
	}
	docs, _, ok := asDocuments(value)
	if !ok {
		return &domain.MappingError{
			Type:     owner,
			Property: field.Property,
			Reason:   fmt.Sprintf("expected nested document, got %T", value),
		}
	}

	records := make([]reflect.Value, 0, len(docs))
	for _, nested := range docs {
		rec, err := m.ToEntity(nested, field.NestedType)
		if err != nil {
			return err
		}
		records = append(records, reflect.ValueOf(rec))
	}

	if !field.Multi {
		if len(records) == 0 {
			return nil
		}
		if len(records) > 1 {
			return &domain.MappingError{
				Type:     owner,
				Property: field.Property,
				Reason:   fmt.Sprintf("expected one nested document, got %d", len(records)),
			}
		}
		setRecord(target, records[0])
		return nil
	}

	out := reflect.MakeSlice(target.Type(), len(records), len(records))
	for i, rec := range records {
		setRecord(out.Index(i), rec)
	}
	target.Set(out)
	return nil
}

// setRecord stores a *T into a T or *T location.
func setRecord(dst, ptr reflect.Value) {
	if dst.Kind() == reflect.Ptr {
		dst.Set(ptr)
		return
	}
	dst.Set(ptr.Elem())
}
