// Package catalog declares the record types solrsync ships with.
//
// Each type carries three sets of tags: solr for the index mapping, db for
// the SQLite source and bson for the MongoDB source. Applications with their
// own records register them on a registry the same way.
package catalog

import (
	"time"

	"github.com/custodia-labs/solrsync/internal/mapping"
)

// Registered type names.
const (
	TypeAuthor  = "Author"
	TypeArticle = "Article"
	TypeComment = "Comment"
)

// Author writes articles. It is only indexed nested in an Article.
type Author struct {
	mapping.Entity `bson:"-" solr:"document=author,nested"`

	ID    int64  `db:"id,key" bson:"_id" solr:"id,id"`
	Name  string `db:"name" bson:"name" solr:"name_s"`
	Email string `db:"email" bson:"email" solr:"email_s"`
}

// Article is a published text.
type Article struct {
	mapping.Entity `bson:"-" solr:"document=article,boost=1.5"`

	ID        int64     `db:"id,key" bson:"_id" solr:"id,id"`
	Title     string    `db:"title" bson:"title" solr:"title_t,boost=2"`
	Body      string    `db:"body" bson:"body" solr:"body_t"`
	Keywords  []string  `db:"keywords" bson:"keywords" solr:"keywords_ss"`
	Published time.Time `db:"published_at" bson:"published_at" solr:"published_dt"`
	Draft     bool      `db:"draft" bson:"draft" solr:"draft_b"`
	Author    *Author   `db:"author_id,ref=Author" bson:"author,omitempty" solr:"author_id,nested=Author"`

	// Views is kept in the store only.
	Views int `db:"views" bson:"views"`
}

// Comment is a reader's comment on an article.
type Comment struct {
	mapping.Entity `bson:"-" solr:"document=comment"`

	ID        int64     `db:"id,key" bson:"_id" solr:"id,id"`
	ArticleID int64     `db:"article_id" bson:"article_id" solr:"article_id_l"`
	Body      string    `db:"body" bson:"body" solr:"body_t"`
	Created   time.Time `db:"created_at" bson:"created_at" solr:"created_dt"`
}

// types lists the catalog types. Nested types come first so the embedding
// types can refer to them.
var types = []struct {
	name      string
	prototype any
}{
	{TypeAuthor, Author{}},
	{TypeArticle, Article{}},
	{TypeComment, Comment{}},
}

// Register adds the catalog types to r.
func Register(r *mapping.Registry) error {
	for _, t := range types {
		if err := r.Register(t.name, t.prototype); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the catalog types.
func NewRegistry() *mapping.Registry {
	r := mapping.NewRegistry()
	for _, t := range types {
		r.MustRegister(t.name, t.prototype)
	}
	return r
}
