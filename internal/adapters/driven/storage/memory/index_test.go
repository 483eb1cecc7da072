package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

func newDoc(id any, title string) *domain.Document {
	doc := domain.NewDocument()
	doc.Set("id", id)
	doc.Set("title_s", title)
	return doc
}

func TestIndexClient_AddVisibleAfterCommit(t *testing.T) {
	c := NewIndexClient()
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, []*domain.Document{newDoc(1, "Go"), newDoc(2, "Rust")}))
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Commit(ctx))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, c.Commits())
}

func TestIndexClient_AddReplacesByUniqueKey(t *testing.T) {
	c := NewIndexClient()
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, []*domain.Document{newDoc(1, "Go")}))
	require.NoError(t, c.Add(ctx, []*domain.Document{newDoc(int64(1), "Go 2")}))
	require.NoError(t, c.Commit(ctx))

	hits, err := c.Query(ctx, domain.SearchQuery{Query: domain.MatchAllQuery})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	title, _ := hits[0].Get("title_s")
	assert.Equal(t, "Go 2", title)
}

func TestIndexClient_DeleteByQuery(t *testing.T) {
	c := NewIndexClient()
	ctx := context.Background()
	require.NoError(t, c.Add(ctx, []*domain.Document{newDoc(1, "Go"), newDoc(2, `say "hi"`)}))
	require.NoError(t, c.Commit(ctx))

	require.NoError(t, c.DeleteByQuery(ctx, `title_s:"say \"hi\""`))
	assert.Equal(t, 2, c.Len(), "delete is pending until commit")
	require.NoError(t, c.Commit(ctx))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.DeleteByQuery(ctx, domain.MatchAllQuery))
	require.NoError(t, c.Commit(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestIndexClient_DeleteByQuery_Malformed(t *testing.T) {
	c := NewIndexClient()

	err := c.DeleteByQuery(context.Background(), `id:"1`)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexClient_Query(t *testing.T) {
	c := NewIndexClient()
	ctx := context.Background()
	docs := []*domain.Document{newDoc(1, "Go"), newDoc(2, "Golang"), newDoc(3, "Rust")}
	docs[1].Set("keywords_ss", []string{"google", "lang"})
	require.NoError(t, c.Add(ctx, docs))
	require.NoError(t, c.Commit(ctx))

	tests := []struct {
		name  string
		query domain.SearchQuery
		want  []any
	}{
		{"match all", domain.SearchQuery{Query: "*:*"}, []any{1, 2, 3}},
		{"field term", domain.SearchQuery{Query: "title_s:Go"}, []any{1}},
		{"free text", domain.SearchQuery{Query: "go"}, []any{1, 2}},
		{"multi-valued", domain.SearchQuery{Query: "keywords_ss:lang"}, []any{2}},
		{"conjunction", domain.SearchQuery{Query: "go AND id:2"}, []any{2}},
		{"filter", domain.SearchQuery{Query: "*:*", Filters: []string{"id:3"}}, []any{3}},
		{"paging", domain.SearchQuery{Query: "*:*", Start: 1, Rows: 1}, []any{2}},
		{"start past end", domain.SearchQuery{Query: "*:*", Start: 5}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := c.Query(ctx, tt.query)
			require.NoError(t, err)

			var ids []any
			for _, h := range hits {
				id, _ := h.Get("id")
				ids = append(ids, id)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestIndexClient_FailOn(t *testing.T) {
	c := NewIndexClient()
	ctx := context.Background()
	boom := errors.New("boom")
	c.FailOn["add"] = boom

	assert.ErrorIs(t, c.Add(ctx, []*domain.Document{newDoc(1, "Go")}), boom)
	assert.NoError(t, c.Commit(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestIndexClient_Close(t *testing.T) {
	c := NewIndexClient()
	require.NoError(t, c.Close())

	assert.True(t, c.Closed())
	assert.Error(t, c.Commit(context.Background()))
}
