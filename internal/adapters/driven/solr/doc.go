// Package solr implements driven.IndexClient over the Solr HTTP API.
//
// Documents are sent with the JSON update handler and read back from the
// select handler. Field order is preserved in both directions, field boosts
// use the {"value", "boost"} form and nested documents are sent as labelled
// child documents.
package solr
