package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

func newTestFacade(t *testing.T) (*IndexFacade, *mockIndexClient) {
	t.Helper()
	client := &mockIndexClient{}
	return NewIndexFacade(client, mapping.NewMapper(newFixtureRegistry(t))), client
}

func TestIndexFacade_Index(t *testing.T) {
	facade, client := newTestFacade(t)

	err := facade.Index(context.Background(), &fixtureArticle{ID: 3, Title: "Go"})

	require.NoError(t, err)
	require.Len(t, client.adds, 1)
	require.Len(t, client.adds[0], 1)
	title, _ := client.adds[0][0].Get("title_s")
	assert.Equal(t, "Go", title)
	assert.Equal(t, 1, client.commits)
}

func TestIndexFacade_SynchronizeIndex_OneAddOneCommit(t *testing.T) {
	facade, client := newTestFacade(t)

	err := facade.SynchronizeIndex(context.Background(), articles(3)...)

	require.NoError(t, err)
	require.Len(t, client.adds, 1)
	assert.Len(t, client.adds[0], 3)
	assert.Equal(t, 1, client.commits)
}

func TestIndexFacade_SynchronizeIndex_Empty(t *testing.T) {
	facade, client := newTestFacade(t)

	require.NoError(t, facade.SynchronizeIndex(context.Background()))
	assert.Empty(t, client.adds)
	assert.Zero(t, client.commits)
}

func TestIndexFacade_SynchronizeIndex_MappingErrorSendsNothing(t *testing.T) {
	facade, client := newTestFacade(t)

	err := facade.SynchronizeIndex(context.Background(), &fixtureArticle{ID: 1}, struct{}{})

	assert.ErrorIs(t, err, domain.ErrMapping)
	assert.Empty(t, client.adds)
	assert.Zero(t, client.commits)
}

func TestIndexFacade_Remove(t *testing.T) {
	tests := []struct {
		name   string
		record any
		want   string
	}{
		{"single identifier", &fixtureArticle{ID: 3, Title: "Go"}, `id:"3"`},
		{"composite identifier", fixtureTranslation{ArticleID: 3, Lang: "de"}, `article_id:"3" AND lang_s:"de"`},
		{"escaped value", fixtureTranslation{ArticleID: 1, Lang: `a"b\c`}, `article_id:"1" AND lang_s:"a\"b\\c"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade, client := newTestFacade(t)

			require.NoError(t, facade.Remove(context.Background(), tt.record))
			assert.Equal(t, []string{tt.want}, client.deletes)
			assert.Equal(t, 1, client.commits)
		})
	}
}

func TestIndexFacade_Remove_NoIdentifier(t *testing.T) {
	facade, client := newTestFacade(t)

	err := facade.Remove(context.Background(), fixtureNote{Text: "x"})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Empty(t, client.deletes)
}

func TestIndexFacade_Remove_PartialIdentifier(t *testing.T) {
	type revision struct {
		mapping.Entity `solr:"document=revision"`

		ArticleID *int64 `solr:"article_id,id"`
		Lang      string `solr:"lang_s,id"`
	}
	registry := newFixtureRegistry(t)
	require.NoError(t, registry.Register("Revision", revision{}))
	client := &mockIndexClient{}
	facade := NewIndexFacade(client, mapping.NewMapper(registry))

	err := facade.Remove(context.Background(), &revision{Lang: "en"})

	assert.ErrorIs(t, err, domain.ErrMapping)
	assert.Empty(t, client.deletes)
	assert.Zero(t, client.commits)

	id := int64(4)
	require.NoError(t, facade.Remove(context.Background(), &revision{ArticleID: &id, Lang: "en"}))
	assert.Equal(t, []string{`article_id:"4" AND lang_s:"en"`}, client.deletes)
}

func TestIndexFacade_NestedOnlyType(t *testing.T) {
	facade, client := newTestFacade(t)
	ctx := context.Background()

	err := facade.Index(ctx, &fixtureAuthor{ID: 7, Name: "Ann"})
	assert.ErrorIs(t, err, domain.ErrMapping)

	err = facade.SynchronizeIndex(ctx, &fixtureArticle{ID: 1}, fixtureAuthor{ID: 7})
	assert.ErrorIs(t, err, domain.ErrMapping)

	err = facade.Remove(ctx, fixtureAuthor{ID: 7})
	assert.ErrorIs(t, err, domain.ErrMapping)

	assert.Empty(t, client.adds)
	assert.Empty(t, client.deletes)
	assert.Zero(t, client.commits)
}

func TestIndexFacade_ClearIndex(t *testing.T) {
	facade, client := newTestFacade(t)

	require.NoError(t, facade.ClearIndex(context.Background()))
	assert.Equal(t, []string{domain.MatchAllQuery}, client.deletes)
	assert.Equal(t, 1, client.commits)
}

func TestIndexFacade_ClearThenQueryIsEmpty(t *testing.T) {
	ctx := context.Background()
	facade := NewIndexFacade(memory.NewIndexClient(), mapping.NewMapper(newFixtureRegistry(t)))
	require.NoError(t, facade.SynchronizeIndex(ctx, articles(5)...))
	require.Len(t, facade.Query(ctx, domain.SearchQuery{Entity: "Article", Query: "*:*"}), 5)

	require.NoError(t, facade.ClearIndex(ctx))

	assert.Empty(t, facade.Query(ctx, domain.SearchQuery{Entity: "Article", Query: "*:*"}))
}

func TestIndexFacade_RemoveThenQuery(t *testing.T) {
	ctx := context.Background()
	facade := NewIndexFacade(memory.NewIndexClient(), mapping.NewMapper(newFixtureRegistry(t)))
	require.NoError(t, facade.SynchronizeIndex(ctx, articles(3)...))

	require.NoError(t, facade.Remove(ctx, &fixtureArticle{ID: 2}))

	hits := facade.Query(ctx, domain.SearchQuery{Entity: "Article"})
	require.Len(t, hits, 2)
	assert.Equal(t, int64(1), hits[0].(*fixtureArticle).ID)
	assert.Equal(t, int64(3), hits[1].(*fixtureArticle).ID)
}

func TestIndexFacade_Query_MapsHitsInOrder(t *testing.T) {
	facade, client := newTestFacade(t)
	for _, id := range []int64{9, 4} {
		doc := domain.NewDocument()
		doc.Set("id", id)
		doc.Set("title_s", "hit")
		client.hits = append(client.hits, doc)
	}

	hits := facade.Query(context.Background(), domain.SearchQuery{Entity: "Article", Query: "title_s:hit"})

	require.Len(t, hits, 2)
	assert.Equal(t, &fixtureArticle{ID: 9, Title: "hit"}, hits[0])
	assert.Equal(t, &fixtureArticle{ID: 4, Title: "hit"}, hits[1])
	assert.Equal(t, "title_s:hit", client.queries[0].Query)
}

func TestIndexFacade_Query_DefaultsToMatchAll(t *testing.T) {
	facade, client := newTestFacade(t)

	facade.Query(context.Background(), domain.SearchQuery{Entity: "Article"})

	require.Len(t, client.queries, 1)
	assert.Equal(t, domain.MatchAllQuery, client.queries[0].Query)
}

func TestIndexFacade_Query_FailuresYieldEmpty(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		facade, client := newTestFacade(t)
		client.queryErr = errBoom

		hits := facade.Query(context.Background(), domain.SearchQuery{Entity: "Article"})

		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	})

	t.Run("unmappable hit", func(t *testing.T) {
		facade, client := newTestFacade(t)
		doc := domain.NewDocument()
		doc.Set("id", "not a number")
		client.hits = []*domain.Document{doc}

		assert.Empty(t, facade.Query(context.Background(), domain.SearchQuery{Entity: "Article"}))
	})

	t.Run("unknown entity", func(t *testing.T) {
		facade, client := newTestFacade(t)
		client.hits = []*domain.Document{domain.NewDocument()}

		assert.Empty(t, facade.Query(context.Background(), domain.SearchQuery{Entity: "Missing"}))
	})
}

func TestIndexFacade_WrapsClientFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(c *mockIndexClient)
		call  func(f *IndexFacade) error
		op    string
	}{
		{"add", func(c *mockIndexClient) { c.addErr = errBoom },
			func(f *IndexFacade) error { return f.Index(ctx, &fixtureArticle{ID: 1}) }, "index"},
		{"commit after add", func(c *mockIndexClient) { c.commitErr = errBoom },
			func(f *IndexFacade) error { return f.SynchronizeIndex(ctx, &fixtureArticle{ID: 1}) }, "index"},
		{"delete", func(c *mockIndexClient) { c.deleteErr = errBoom },
			func(f *IndexFacade) error { return f.Remove(ctx, &fixtureArticle{ID: 1}) }, "remove"},
		{"commit after delete", func(c *mockIndexClient) { c.commitErr = errBoom },
			func(f *IndexFacade) error { return f.Remove(ctx, &fixtureArticle{ID: 1}) }, "remove"},
		{"clear", func(c *mockIndexClient) { c.deleteErr = errBoom },
			func(f *IndexFacade) error { return f.ClearIndex(ctx) }, "clear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade, client := newTestFacade(t)
			tt.setup(client)

			err := tt.call(facade)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrIndex)
			assert.ErrorIs(t, err, errBoom)
			var ie *domain.IndexError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.op, ie.Op)
		})
	}
}

func TestIndexFacade_Close(t *testing.T) {
	facade, client := newTestFacade(t)

	require.NoError(t, facade.Close())
	assert.True(t, client.closed)
}
