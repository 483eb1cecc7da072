package domain

// nestedKeySuffix marks a nested relation in a field mapping listing.
const nestedKeySuffix = ".id"

// EntityMetadata describes how one record type maps onto index documents.
// It is built once per type by the mapping registry and shared read-only.
type EntityMetadata struct {
	// TypeName is the registry type identifier.
	TypeName string

	// DocumentName is the index collection/type name.
	DocumentName string

	// Boost is the document-level boost. Only meaningful when HasBoost is set.
	Boost float64

	// HasBoost reports whether a document boost was declared.
	HasBoost bool

	// Nested marks types that only appear embedded in another document.
	Nested bool

	// Fields lists the mapped fields in declaration order.
	Fields []FieldMetadata
}

// FieldMetadata describes a single mapped field.
type FieldMetadata struct {
	// DocumentField is the field name in the index document.
	DocumentField string

	// Property is the source property (struct field) name.
	Property string

	// Boost is the field boost, zero when unset.
	Boost float64

	// Identifier marks the record's identifier field(s).
	Identifier bool

	// NestedType is the registry type identifier of the embedded record,
	// empty for scalar fields.
	NestedType string

	// Multi marks a nested field holding a collection of records.
	Multi bool
}

// IsNested reports whether the field embeds another entity's document.
func (f FieldMetadata) IsNested() bool {
	return f.NestedType != ""
}

// MappingKey returns the field's key in a field mapping listing.
// Nested relations carry the ".id" suffix used by index schemas.
func (f FieldMetadata) MappingKey() string {
	if f.IsNested() {
		return f.DocumentField + nestedKeySuffix
	}
	return f.DocumentField
}

// Field returns the metadata of a document field.
func (m *EntityMetadata) Field(documentField string) (FieldMetadata, bool) {
	for _, f := range m.Fields {
		if f.DocumentField == documentField {
			return f, true
		}
	}
	return FieldMetadata{}, false
}

// NestedFields returns the fields that embed another entity.
func (m *EntityMetadata) NestedFields() []FieldMetadata {
	var fields []FieldMetadata
	for _, f := range m.Fields {
		if f.IsNested() {
			fields = append(fields, f)
		}
	}
	return fields
}

// IdentifierFields returns the fields marked as identifier.
func (m *EntityMetadata) IdentifierFields() []FieldMetadata {
	var fields []FieldMetadata
	for _, f := range m.Fields {
		if f.Identifier {
			fields = append(fields, f)
		}
	}
	return fields
}
