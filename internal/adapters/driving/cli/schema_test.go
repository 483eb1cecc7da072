package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

func testSchema() []domain.SchemaEntry {
	author := &domain.EntityMetadata{
		TypeName:     "Author",
		DocumentName: "author",
		Nested:       true,
		Fields: []domain.FieldMetadata{
			{DocumentField: "id", Property: "ID", Identifier: true},
			{DocumentField: "name_s", Property: "Name"},
		},
	}
	article := &domain.EntityMetadata{
		TypeName:     "Article",
		DocumentName: "article",
		Boost:        2,
		HasBoost:     true,
		Fields: []domain.FieldMetadata{
			{DocumentField: "id", Property: "ID", Identifier: true},
			{DocumentField: "title_t", Property: "Title", Boost: 1.5},
			{DocumentField: "author_id", Property: "Author", NestedType: "Author"},
		},
	}
	return []domain.SchemaEntry{{
		Metadata: article,
		Nested:   []domain.NestedSchema{{Field: article.Fields[2], Metadata: author}},
	}}
}

func TestSchemaShow(t *testing.T) {
	useServices(t, &Services{Schema: &mockSchemaService{entries: testSchema()}})

	out, err := execute(t, "schema", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Article (document: article, boost: 2)")
	assert.Contains(t, out, "title_t")
	assert.Contains(t, out, "1.5")
	assert.Contains(t, out, "author_id.id")
	assert.Contains(t, out, "Author (document: author, nested only)")
	assert.Contains(t, out, "name_s")
}

func TestSchemaShow_Empty(t *testing.T) {
	useServices(t, &Services{Schema: &mockSchemaService{}})

	out, err := execute(t, "schema", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "No indexable types registered.")
}

func TestSchemaShow_InvalidTypesDoNotFail(t *testing.T) {
	useServices(t, &Services{Schema: &mockSchemaService{
		entries: testSchema(),
		err:     errors.New("invalid mapping for Broken"),
	}})

	out, err := execute(t, "schema", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Article (document: article, boost: 2)")
	assert.Contains(t, out, "Some types could not be loaded")
	assert.Contains(t, out, "invalid mapping for Broken")
}

func TestEntityHeading(t *testing.T) {
	assert.Equal(t, "Comment (document: comment)",
		entityHeading(&domain.EntityMetadata{TypeName: "Comment", DocumentName: "comment"}))
	assert.Equal(t, "Tag (document: tag, boost: 0.5, nested only)",
		entityHeading(&domain.EntityMetadata{TypeName: "Tag", DocumentName: "tag", Boost: 0.5, HasBoost: true, Nested: true}))
}
