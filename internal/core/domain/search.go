package domain

// MatchAllQuery matches every document in the index.
const MatchAllQuery = "*:*"

// SearchQuery is a query against the index whose hits are mapped back to records.
type SearchQuery struct {
	// Entity is the registry type the hits are mapped to.
	Entity string

	// Query is the query string in the index server's syntax.
	Query string

	// Filters are additional filter queries.
	Filters []string

	// Start is the number of hits to skip.
	Start int

	// Rows is the maximum number of hits, zero for the server default.
	Rows int
}
