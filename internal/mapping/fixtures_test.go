package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testAuthor struct {
	Entity `solr:"document=author,nested"`

	ID   int64  `solr:"id,id"`
	Name string `solr:"name_s"`
}

type testTag struct {
	Entity `solr:"document=tag,nested"`

	ID   int64  `solr:"id,id"`
	Name string `solr:"name_s"`
}

type testArticle struct {
	Entity `solr:"document=article,boost=1.5"`

	ID        int64       `solr:"id,id"`
	Title     string      `solr:"title_s,boost=2"`
	Body      string      `solr:"body_t"`
	Views     int         `solr:"views_i"`
	Rating    float64     `solr:"rating_f"`
	Draft     bool        `solr:"draft_b"`
	Published time.Time   `solr:"published_dt"`
	Keywords  []string    `solr:"keywords_ss"`
	Subtitle  *string     `solr:"subtitle_s"`
	Author    *testAuthor `solr:"author_id,nested=Author"`
	Tags      []*testTag  `solr:"tags,nested=Tag"`
	Internal  string
}

// testNote has no identifier field.
type testNote struct {
	Entity `solr:"document=note"`

	Text string `solr:"text_t"`
}

// testPlain carries no index mapping.
type testPlain struct {
	Name string
}

// testSecret maps an unexported field, which cannot be read.
type testSecret struct {
	Entity `solr:"document=secret"`

	ID     int64  `solr:"id,id"`
	hidden string `solr:"hidden_s"`
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register("Article", testArticle{}))
	require.NoError(t, r.Register("Author", &testAuthor{}))
	require.NoError(t, r.Register("Tag", testTag{}))
	require.NoError(t, r.Register("Note", testNote{}))
	require.NoError(t, r.Register("Plain", testPlain{}))
	require.NoError(t, r.Register("Secret", testSecret{hidden: "x"}))
	return r
}
