package catalog

import _ "embed"

// SQLiteSchema creates the tables the SQLite source reads the catalog
// types from.
//
//go:embed schema.sql
var SQLiteSchema string
