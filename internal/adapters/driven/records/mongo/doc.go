// Package mongo reads records from a MongoDB database.
//
// Each registered type maps onto one collection. Documents are decoded with
// the driver's bson codec, so records use `bson` struct tags and embedded
// relations decode straight into nested structs. Pages are ordered by _id.
package mongo
