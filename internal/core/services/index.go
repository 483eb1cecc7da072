package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
	"github.com/custodia-labs/solrsync/internal/logger"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// Ensure IndexFacade implements the interface.
var _ driving.IndexService = (*IndexFacade)(nil)

// Facade operations reported in IndexError.
const (
	opIndex  = "index"
	opRemove = "remove"
	opClear  = "clear"
)

// IndexFacade maps records to documents and drives the index client.
// Each mutating call ends with a commit.
type IndexFacade struct {
	client driven.IndexClient
	mapper *mapping.Mapper
}

// NewIndexFacade creates a facade over an index client.
func NewIndexFacade(client driven.IndexClient, mapper *mapping.Mapper) *IndexFacade {
	return &IndexFacade{
		client: client,
		mapper: mapper,
	}
}

// Index maps a record with every field and adds it to the index.
func (f *IndexFacade) Index(ctx context.Context, record any) error {
	return f.SynchronizeIndex(ctx, record)
}

// SynchronizeIndex maps every record and sends them in one add followed by
// one commit. A mapping failure aborts before anything is sent.
func (f *IndexFacade) SynchronizeIndex(ctx context.Context, records ...any) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]*domain.Document, 0, len(records))
	for _, record := range records {
		if err := f.checkStandalone(record); err != nil {
			return err
		}
		doc, err := f.mapper.ToDocument(record, domain.SelectAll)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if err := f.client.Add(ctx, docs); err != nil {
		return &domain.IndexError{Op: opIndex, Err: err}
	}
	if err := f.client.Commit(ctx); err != nil {
		return &domain.IndexError{Op: opIndex, Err: err}
	}
	logger.Debug("Indexed %d document(s)", len(docs))
	return nil
}

// Remove deletes the record's document, matched on its identifier fields.
func (f *IndexFacade) Remove(ctx context.Context, record any) error {
	if err := f.checkStandalone(record); err != nil {
		return err
	}
	doc, err := f.mapper.ToDocument(record, domain.SelectIdentifier)
	if err != nil {
		return err
	}
	query, err := identifierQuery(doc)
	if err != nil {
		return err
	}

	logger.Debug("Delete by query: %s", query)
	if err := f.client.DeleteByQuery(ctx, query); err != nil {
		return &domain.IndexError{Op: opRemove, Err: err}
	}
	if err := f.client.Commit(ctx); err != nil {
		return &domain.IndexError{Op: opRemove, Err: err}
	}
	return nil
}

// ClearIndex deletes every document in the index.
func (f *IndexFacade) ClearIndex(ctx context.Context) error {
	if err := f.client.DeleteByQuery(ctx, domain.MatchAllQuery); err != nil {
		return &domain.IndexError{Op: opClear, Err: err}
	}
	if err := f.client.Commit(ctx); err != nil {
		return &domain.IndexError{Op: opClear, Err: err}
	}
	logger.Info("Index cleared")
	return nil
}

// Query runs a query and maps the hits to query.Entity in ranking order.
// Any failure is logged and yields an empty result.
func (f *IndexFacade) Query(ctx context.Context, query domain.SearchQuery) []any {
	if query.Query == "" {
		query.Query = domain.MatchAllQuery
	}

	docs, err := f.client.Query(ctx, query)
	if err != nil {
		logger.Warn("Query %q failed: %v", query.Query, err)
		return []any{}
	}

	records := make([]any, 0, len(docs))
	for _, doc := range docs {
		record, err := f.mapper.ToEntity(doc, query.Entity)
		if err != nil {
			logger.Warn("Query %q: cannot map hit to %s: %v", query.Query, query.Entity, err)
			return []any{}
		}
		records = append(records, record)
	}
	return records
}

// Close releases the index client.
func (f *IndexFacade) Close() error {
	return f.client.Close()
}

// checkStandalone rejects records of types that only exist nested in other
// documents and have no document of their own.
func (f *IndexFacade) checkStandalone(record any) error {
	meta, err := f.mapper.Metadata(record)
	if err != nil {
		return err
	}
	if meta.Nested {
		return &domain.MappingError{Type: meta.TypeName, Reason: "type is only indexed nested in other documents"}
	}
	return nil
}

// identifierQuery builds a delete query matching every identifier field of doc.
func identifierQuery(doc *domain.Document) (string, error) {
	fields := doc.Fields()
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: record has no identifier value", domain.ErrConfiguration)
	}

	clauses := make([]string, 0, len(fields))
	for _, field := range fields {
		clauses = append(clauses, fmt.Sprintf("%s:\"%s\"", field.Name, escapeQueryValue(formatQueryValue(field.Value))))
	}
	return strings.Join(clauses, " AND "), nil
}

func formatQueryValue(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// escapeQueryValue escapes a value for use inside a quoted phrase.
func escapeQueryValue(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(s)
}
