package catalog_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/adapters/driven/records/sqlite"
	"github.com/custodia-labs/solrsync/internal/catalog"
)

func TestSQLiteSchema_ServesCatalogTypes(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "records.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, catalog.SQLiteSchema)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO author (id, name, email) VALUES (1, 'Ada', 'ada@example.org');
		INSERT INTO article (id, title, keywords, published_at, author_id, views)
			VALUES (1, 'Engines', '["history"]', '2024-01-15T09:30:00Z', 1, 12);
		INSERT INTO comment (id, article_id, body) VALUES (1, 1, 'Nice');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := sqlite.NewSource(ctx, sqlite.Config{DSN: dsn}, catalog.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	repo, err := src.Repository(catalog.TypeArticle)
	require.NoError(t, err)
	records, err := repo.FindPage(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	article := records[0].(*catalog.Article)
	assert.Equal(t, "Engines", article.Title)
	assert.Equal(t, []string{"history"}, article.Keywords)
	assert.Equal(t, 12, article.Views)
	require.NotNil(t, article.Author)
	assert.Equal(t, "Ada", article.Author.Name)

	repo, err = src.Repository(catalog.TypeComment)
	require.NoError(t, err)
	n, err := repo.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
