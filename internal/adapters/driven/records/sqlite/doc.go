// Package sqlite reads records from a relational SQLite database.
//
// Each registered type maps onto one table. Columns are taken from `db`
// struct tags:
//
//	ID     int64   `db:"id,key"`
//	Title  string  `db:"title"`
//	Author *Author `db:"author_id,ref=Author"`
//
// A ref column holds the key of a record of another registered type; the
// referenced records are loaded after each page with a single IN query per
// relation. Fields without a db tag are left at their zero value.
package sqlite
