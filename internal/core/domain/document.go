package domain

// Document is the index-side representation of a record: an ordered list of
// fields whose values are scalars, nested documents or lists of nested documents.
// A Document belongs to the call that produced it and is not shared.
type Document struct {
	// Boost is the document-level boost. Only meaningful when HasBoost is set.
	Boost float64

	// HasBoost reports whether a document boost applies.
	HasBoost bool

	fields []Field
}

// Field is a single named value of a Document.
type Field struct {
	// Name is the document field name.
	Name string

	// Value is a scalar, *Document or []*Document.
	Value any

	// Boost is the field boost, zero when unset.
	Boost float64
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Set adds a field or replaces the value of an existing one, keeping its position.
func (d *Document) Set(name string, value any) {
	d.SetBoosted(name, value, 0)
}

// SetBoosted is Set with a field boost.
func (d *Document) SetBoosted(name string, value any, boost float64) {
	for i := range d.fields {
		if d.fields[i].Name == name {
			d.fields[i].Value = value
			d.fields[i].Boost = boost
			return
		}
	}
	d.fields = append(d.fields, Field{Name: name, Value: value, Boost: boost})
}

// Get returns the value of a field.
func (d *Document) Get(name string) (any, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Has reports whether the field is present.
func (d *Document) Has(name string) bool {
	_, ok := d.Get(name)
	return ok
}

// Nested returns the nested document stored under name.
func (d *Document) Nested(name string) (*Document, bool) {
	v, ok := d.Get(name)
	if !ok {
		return nil, false
	}
	nested, ok := v.(*Document)
	return nested, ok
}

// Fields returns the fields in insertion order.
func (d *Document) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Names returns the field names in insertion order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		names = append(names, f.Name)
	}
	return names
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}
