package domain

// SchemaEntry describes one indexable type for operator reports.
type SchemaEntry struct {
	Metadata *EntityMetadata

	// Nested lists the nested fields together with the embedded type's metadata.
	Nested []NestedSchema
}

// NestedSchema pairs a nested field with the metadata of the embedded type.
type NestedSchema struct {
	Field    FieldMetadata
	Metadata *EntityMetadata
}
