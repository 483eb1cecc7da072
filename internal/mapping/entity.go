package mapping

import "reflect"

// TagName is the struct tag key read by the registry.
const TagName = "solr"

// Entity marks a struct as carrying index mapping configuration.
// Embed it and put the document-level options in its tag.
type Entity struct{}

var entityType = reflect.TypeOf(Entity{})
