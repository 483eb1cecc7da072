package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
)

// Ensure IndexClient implements the interface.
var _ driven.IndexClient = (*IndexClient)(nil)

// UniqueKey is the document field used to replace documents on add.
const UniqueKey = "id"

type pendingOp struct {
	add    []*domain.Document
	delete string
}

// IndexClient is an in-process implementation of driven.IndexClient.
// Adds and deletes are buffered until Commit, like a real index server.
// It understands match-all, field:value and field:"phrase" clauses joined by AND.
type IndexClient struct {
	mu        sync.RWMutex
	committed []*domain.Document
	pending   []pendingOp
	closed    bool

	// FailOn makes the named operation (add, delete, commit, query) fail.
	FailOn map[string]error

	commits int
}

// NewIndexClient creates an empty in-memory index.
func NewIndexClient() *IndexClient {
	return &IndexClient{
		FailOn: make(map[string]error),
	}
}

// Add buffers documents for the next commit.
func (c *IndexClient) Add(_ context.Context, docs []*domain.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("add"); err != nil {
		return err
	}
	c.pending = append(c.pending, pendingOp{add: docs})
	return nil
}

// DeleteByQuery buffers a delete for the next commit.
func (c *IndexClient) DeleteByQuery(_ context.Context, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("delete"); err != nil {
		return err
	}
	if _, err := parseQuery(query); err != nil {
		return err
	}
	c.pending = append(c.pending, pendingOp{delete: query})
	return nil
}

// Commit applies buffered operations in order.
func (c *IndexClient) Commit(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.check("commit"); err != nil {
		return err
	}

	for _, op := range c.pending {
		if op.add != nil {
			for _, doc := range op.add {
				c.put(doc)
			}
			continue
		}
		clauses, _ := parseQuery(op.delete)
		kept := c.committed[:0]
		for _, doc := range c.committed {
			if !matches(doc, clauses) {
				kept = append(kept, doc)
			}
		}
		c.committed = kept
	}
	c.pending = nil
	c.commits++
	return nil
}

// put adds or replaces a document by its unique key.
func (c *IndexClient) put(doc *domain.Document) {
	key, ok := doc.Get(UniqueKey)
	if ok {
		for i, existing := range c.committed {
			if v, ok := existing.Get(UniqueKey); ok && formatValue(v) == formatValue(key) {
				c.committed[i] = doc
				return
			}
		}
	}
	c.committed = append(c.committed, doc)
}

// Query returns committed documents matching the query, in insertion order.
func (c *IndexClient) Query(_ context.Context, query domain.SearchQuery) ([]*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.check("query"); err != nil {
		return nil, err
	}

	clauses, err := parseQuery(query.Query)
	if err != nil {
		return nil, err
	}
	for _, fq := range query.Filters {
		more, err := parseQuery(fq)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, more...)
	}

	var hits []*domain.Document
	for _, doc := range c.committed {
		if matches(doc, clauses) {
			hits = append(hits, doc)
		}
	}

	if query.Start > 0 {
		if query.Start >= len(hits) {
			return []*domain.Document{}, nil
		}
		hits = hits[query.Start:]
	}
	if query.Rows > 0 && len(hits) > query.Rows {
		hits = hits[:query.Rows]
	}
	return hits, nil
}

// Close marks the client closed. Further calls fail.
func (c *IndexClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Len returns the number of committed documents.
func (c *IndexClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.committed)
}

// Commits returns the number of successful commits.
func (c *IndexClient) Commits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.commits
}

// Closed reports whether Close was called.
func (c *IndexClient) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *IndexClient) check(op string) error {
	if c.closed {
		return fmt.Errorf("index client closed")
	}
	if err, ok := c.FailOn[op]; ok {
		return err
	}
	return nil
}

// clause is one field:value condition. An empty field matches any field.
type clause struct {
	field string
	value string
	all   bool
}

func parseQuery(query string) ([]clause, error) {
	query = strings.TrimSpace(query)
	if query == "" || query == domain.MatchAllQuery {
		return []clause{{all: true}}, nil
	}

	parts := strings.Split(query, " AND ")
	clauses := make([]clause, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == domain.MatchAllQuery {
			clauses = append(clauses, clause{all: true})
			continue
		}
		field, value, found := strings.Cut(part, ":")
		if !found {
			field, value = "", part
		}
		if strings.HasPrefix(value, `"`) {
			if len(value) < 2 || !strings.HasSuffix(value, `"`) {
				return nil, fmt.Errorf("%w: unterminated phrase in %q", domain.ErrInvalidInput, part)
			}
			value = unescape(value[1 : len(value)-1])
		}
		clauses = append(clauses, clause{field: field, value: value})
	}
	return clauses, nil
}

func unescape(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func matches(doc *domain.Document, clauses []clause) bool {
	for _, cl := range clauses {
		if cl.all {
			continue
		}
		if !matchClause(doc, cl) {
			return false
		}
	}
	return true
}

func matchClause(doc *domain.Document, cl clause) bool {
	if cl.field != "" {
		v, ok := doc.Get(cl.field)
		return ok && valueMatches(v, cl.value, false)
	}
	for _, f := range doc.Fields() {
		if valueMatches(f.Value, cl.value, true) {
			return true
		}
	}
	return false
}

// valueMatches compares a stored value with a query term. Multi-valued
// fields match when any value does; term matching is case-insensitive.
func valueMatches(v any, term string, contains bool) bool {
	switch val := v.(type) {
	case *domain.Document, []*domain.Document:
		return false
	case []string:
		for _, s := range val {
			if valueMatches(s, term, contains) {
				return true
			}
		}
		return false
	case []any:
		for _, item := range val {
			if valueMatches(item, term, contains) {
				return true
			}
		}
		return false
	}
	s := formatValue(v)
	if contains {
		return strings.Contains(strings.ToLower(s), strings.ToLower(term))
	}
	return s == term
}

func formatValue(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(v)
}
