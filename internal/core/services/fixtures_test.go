package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

type fixtureAuthor struct {
	mapping.Entity `solr:"document=author,nested"`

	ID   int64  `solr:"id,id"`
	Name string `solr:"name_s"`
}

type fixtureArticle struct {
	mapping.Entity `solr:"document=article"`

	ID     int64          `solr:"id,id"`
	Title  string         `solr:"title_s"`
	Author *fixtureAuthor `solr:"author_id,nested=Author"`
}

// fixtureTranslation is identified by two fields.
type fixtureTranslation struct {
	mapping.Entity `solr:"document=translation"`

	ArticleID int64  `solr:"article_id,id"`
	Lang      string `solr:"lang_s,id"`
	Title     string `solr:"title_s"`
}

type fixtureNote struct {
	mapping.Entity `solr:"document=note"`

	Text string `solr:"text_t"`
}

type fixtureBroken struct {
	mapping.Entity `solr:"document=broken"`

	A string `solr:"a_s"`
	B string `solr:"a_s"`
}

func newFixtureRegistry(t *testing.T) *mapping.Registry {
	t.Helper()
	r := mapping.NewRegistry()
	require.NoError(t, r.Register("Article", fixtureArticle{}))
	require.NoError(t, r.Register("Author", fixtureAuthor{}))
	require.NoError(t, r.Register("Translation", fixtureTranslation{}))
	require.NoError(t, r.Register("Note", fixtureNote{}))
	return r
}

func articles(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = &fixtureArticle{ID: int64(i + 1), Title: "Article"}
	}
	return out
}

// mockIndexClient records every call made by the facade.
type mockIndexClient struct {
	mu      sync.Mutex
	adds    [][]*domain.Document
	deletes []string
	commits int
	closed  bool
	queries []domain.SearchQuery

	hits      []*domain.Document
	addErr    error
	deleteErr error
	commitErr error
	queryErr  error
}

var _ driven.IndexClient = (*mockIndexClient)(nil)

func (m *mockIndexClient) Add(_ context.Context, docs []*domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.adds = append(m.adds, docs)
	return nil
}

func (m *mockIndexClient) DeleteByQuery(_ context.Context, query string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, query)
	return nil
}

func (m *mockIndexClient) Commit(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	return nil
}

func (m *mockIndexClient) Query(_ context.Context, q domain.SearchQuery) ([]*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.hits, nil
}

func (m *mockIndexClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockConfirmer answers every prompt with a fixed reply.
type mockConfirmer struct {
	mu      sync.Mutex
	answer  bool
	err     error
	prompts []string
}

func (m *mockConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.answer, m.err
}

// bufferReporter collects progress messages.
type bufferReporter struct {
	mu    sync.Mutex
	lines []string
}

func (b *bufferReporter) Printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

func (b *bufferReporter) Contains(sub string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")
