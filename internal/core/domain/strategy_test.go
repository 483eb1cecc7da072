package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleMetadata() *EntityMetadata {
	return &EntityMetadata{
		TypeName:     "Article",
		DocumentName: "article",
		Fields: []FieldMetadata{
			{DocumentField: "id", Property: "ID", Identifier: true},
			{DocumentField: "title_s", Property: "Title", Boost: 2},
			{DocumentField: "author_id", Property: "Author", NestedType: "Author"},
		},
	}
}

func TestSelectAll_DeclarationOrder(t *testing.T) {
	names, err := SelectAll.Select(articleMetadata())

	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title_s", "author_id"}, names)
}

func TestSelectIdentifier(t *testing.T) {
	names, err := SelectIdentifier.Select(articleMetadata())

	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, names)
}

func TestSelectIdentifier_NoIdentifier(t *testing.T) {
	m := &EntityMetadata{
		TypeName: "Note",
		Fields:   []FieldMetadata{{DocumentField: "text_t", Property: "Text"}},
	}

	_, err := SelectIdentifier.Select(m)

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "Note")
}

func TestSelectAll_SupersetOfIdentifier(t *testing.T) {
	cases := []*EntityMetadata{
		articleMetadata(),
		{TypeName: "Composite", Fields: []FieldMetadata{
			{DocumentField: "a", Identifier: true},
			{DocumentField: "b"},
			{DocumentField: "c", Identifier: true},
		}},
	}

	for _, m := range cases {
		all, err := SelectAll.Select(m)
		require.NoError(t, err)
		ids, err := SelectIdentifier.Select(m)
		require.NoError(t, err)

		assert.NotEmpty(t, ids)
		assert.Subset(t, all, ids, m.TypeName)
	}
}

func TestSelect_Unknown(t *testing.T) {
	_, err := FieldSelection(42).Select(articleMetadata())
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "selection(42)", FieldSelection(42).String())
}

func TestFieldMetadata_MappingKey(t *testing.T) {
	m := articleMetadata()

	var keys []string
	for _, f := range m.Fields {
		keys = append(keys, f.MappingKey())
	}
	assert.Equal(t, []string{"id", "title_s", "author_id.id"}, keys)
}

func TestFieldMetadata_IdSuffixIsNotNested(t *testing.T) {
	f := FieldMetadata{DocumentField: "external.id", Property: "ExternalID"}

	assert.False(t, f.IsNested())
	assert.Equal(t, "external.id", f.MappingKey())
}

func TestEntityMetadata_FieldGroups(t *testing.T) {
	m := articleMetadata()

	assert.Len(t, m.NestedFields(), 1)
	assert.Equal(t, "Author", m.NestedFields()[0].NestedType)

	f, ok := m.Field("title_s")
	require.True(t, ok)
	assert.Equal(t, 2.0, f.Boost)

	_, ok = m.Field("missing")
	assert.False(t, ok)
}
