package domain

import "fmt"

// FieldSelection chooses which mapped fields take part in an operation.
type FieldSelection int

const (
	// SelectAll selects every mapped field. Used for full indexing.
	SelectAll FieldSelection = iota

	// SelectIdentifier selects only the identifier field(s). Used for deletes.
	SelectIdentifier
)

// String returns the selection name.
func (s FieldSelection) String() string {
	switch s {
	case SelectAll:
		return "all"
	case SelectIdentifier:
		return "identifier"
	default:
		return fmt.Sprintf("selection(%d)", int(s))
	}
}

// Select returns the document field names taking part in the operation,
// in declaration order.
func (s FieldSelection) Select(m *EntityMetadata) ([]string, error) {
	switch s {
	case SelectAll:
		names := make([]string, 0, len(m.Fields))
		for _, f := range m.Fields {
			names = append(names, f.DocumentField)
		}
		return names, nil

	case SelectIdentifier:
		var names []string
		for _, f := range m.IdentifierFields() {
			names = append(names, f.DocumentField)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: %s declares no identifier field", ErrConfiguration, m.TypeName)
		}
		return names, nil

	default:
		return nil, fmt.Errorf("%w: unknown field selection %d", ErrConfiguration, int(s))
	}
}
