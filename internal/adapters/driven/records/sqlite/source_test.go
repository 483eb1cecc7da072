package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

type testAuthor struct {
	mapping.Entity `solr:"document=author,nested"`

	ID   int64  `db:"id,key" solr:"id,id"`
	Name string `db:"name" solr:"name_s"`
}

type testArticle struct {
	mapping.Entity `solr:"document=article"`

	ID        int64       `db:"id" solr:"id,id"`
	Title     string      `db:"title" solr:"title_s"`
	Published time.Time   `db:"published_at" solr:"published_dt"`
	Keywords  []string    `db:"keywords" solr:"keywords_ss"`
	Draft     bool        `db:"draft" solr:"draft_b"`
	Author    *testAuthor `db:"author_id,ref=Author" solr:"author_id,nested=Author"`
	Ignored   string
}

type testEvent struct {
	Name string `db:""`
}

const schema = `
CREATE TABLE authors (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE articles (
	id INTEGER PRIMARY KEY,
	title TEXT,
	published_at TEXT,
	keywords TEXT,
	draft INTEGER,
	author_id INTEGER REFERENCES authors(id)
);
CREATE TABLE test_event (name TEXT);
INSERT INTO authors (id, name) VALUES (7, 'Ada'), (8, 'Grace');
INSERT INTO articles VALUES
	(3, 'Three', '2024-03-01 10:00:00', '["go","sql"]', 0, 7),
	(1, 'One', '2024-01-01T08:30:00Z', NULL, 1, 8),
	(2, 'Two', '2024-02-01', '[]', 0, NULL),
	(4, 'Four', NULL, NULL, 0, 99);
INSERT INTO test_event (name) VALUES ('b'), ('a'), ('c');
`

func newTestSource(t *testing.T) *Source {
	t.Helper()
	ctx := context.Background()

	registry := mapping.NewRegistry()
	registry.MustRegister("Article", testArticle{})
	registry.MustRegister("Author", testAuthor{})
	registry.MustRegister("TestEvent", testEvent{})
	registry.MustRegister("Missing", struct {
		ID int64 `db:"id"`
	}{})

	s, err := NewSource(ctx, Config{
		DSN:    filepath.Join(t.TempDir(), "records.db"),
		Tables: map[string]string{"Article": "articles", "Author": "authors"},
	}, registry)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.db.ExecContext(ctx, schema)
	require.NoError(t, err)
	return s
}

func TestNewSource_RequiresDSN(t *testing.T) {
	_, err := NewSource(context.Background(), Config{}, mapping.NewRegistry())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSource_Repository_NotFound(t *testing.T) {
	s := newTestSource(t)

	_, err := s.Repository("Unregistered")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Repository("Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound, "registered but no table")
}

func TestRepository_CountAll(t *testing.T) {
	s := newTestSource(t)
	repo, err := s.Repository("Article")
	require.NoError(t, err)

	n, err := repo.CountAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestRepository_FindPage_OrderedByKey(t *testing.T) {
	s := newTestSource(t)
	repo, err := s.Repository("Article")
	require.NoError(t, err)
	ctx := context.Background()

	var ids []int64
	for offset := 0; offset < 4; offset += 3 {
		page, err := repo.FindPage(ctx, offset, 3)
		require.NoError(t, err)
		for _, r := range page {
			ids = append(ids, r.(*testArticle).ID)
		}
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestRepository_FindPage_LoadsColumnsAndRelations(t *testing.T) {
	s := newTestSource(t)
	repo, err := s.Repository("Article")
	require.NoError(t, err)

	page, err := repo.FindPage(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 4)

	one := page[0].(*testArticle)
	assert.Equal(t, "One", one.Title)
	assert.True(t, one.Draft)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC), one.Published.UTC())
	assert.Nil(t, one.Keywords)
	require.NotNil(t, one.Author)
	assert.Equal(t, &testAuthor{ID: 8, Name: "Grace"}, one.Author)

	two := page[1].(*testArticle)
	assert.Nil(t, two.Author)
	assert.Empty(t, two.Keywords)

	three := page[2].(*testArticle)
	assert.Equal(t, []string{"go", "sql"}, three.Keywords)
	assert.Equal(t, "Ada", three.Author.Name)
	assert.Empty(t, three.Ignored)

	four := page[3].(*testArticle)
	assert.Nil(t, four.Author, "dangling reference")
	assert.True(t, four.Published.IsZero())
}

func TestRepository_FindPage_RowidOrderWithoutKey(t *testing.T) {
	s := newTestSource(t)
	repo, err := s.Repository("TestEvent")
	require.NoError(t, err)

	page, err := repo.FindPage(context.Background(), 1, 5)

	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].(*testEvent).Name)
	assert.Equal(t, "c", page[1].(*testEvent).Name)
}

func TestRepository_FindPage_Bounds(t *testing.T) {
	s := newTestSource(t)
	repo, err := s.Repository("Article")
	require.NoError(t, err)
	ctx := context.Background()

	page, err := repo.FindPage(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, page)

	page, err = repo.FindPage(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestRepository_MappedRecordsIndex(t *testing.T) {
	s := newTestSource(t)
	repo, err := s.Repository("Article")
	require.NoError(t, err)
	page, err := repo.FindPage(context.Background(), 2, 1)
	require.NoError(t, err)

	doc, err := mapping.NewMapper(s.registry).ToDocument(page[0], domain.SelectAll)

	require.NoError(t, err)
	author, ok := doc.Nested("author_id")
	require.True(t, ok)
	name, _ := author.Get("name_s")
	assert.Equal(t, "Ada", name)
}

func TestNewTable_Errors(t *testing.T) {
	type noColumns struct{ Name string }
	type badOption struct {
		Name string `db:"name,weird"`
	}

	_, err := newTable("NoColumns", "x", reflectType[noColumns]())
	assert.ErrorIs(t, err, domain.ErrMapping)

	_, err = newTable("BadOption", "x", reflectType[badOption]())
	assert.ErrorIs(t, err, domain.ErrMapping)
}
