// Package mapping derives index mapping metadata from struct tags and
// converts records to index documents and back.
//
// A type becomes indexable by embedding Entity with a document-level tag and
// tagging the fields that take part in the index:
//
//	type Article struct {
//		mapping.Entity `solr:"document=article,boost=1.5"`
//
//		ID     int64   `solr:"id,id"`
//		Title  string  `solr:"title_s,boost=2"`
//		Author *Author `solr:"author_id,nested=Author"`
//	}
//
//	type Author struct {
//		mapping.Entity `solr:"document=author,nested"`
//
//		ID   int64  `solr:"id,id"`
//		Name string `solr:"name_s"`
//	}
//
// Document-level options: document=NAME, boost=FLOAT, nested.
// Field-level options: the first element names the document field (defaults
// to the lower-cased property name), then id, boost=FLOAT and nested=TYPE.
// A field tagged "-" or left untagged is not mapped.
//
// Types are registered on a Registry under a type identifier. Metadata is
// parsed on first use and cached for the lifetime of the Registry.
package mapping
