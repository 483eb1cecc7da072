package solr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// encodeAdd renders an update request adding docs. Each document becomes an
// "add" command so document boosts can be carried.
func encodeAdd(docs []*domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"add":{"doc":`)
		if err := writeDocument(&buf, doc); err != nil {
			return nil, err
		}
		if doc.HasBoost {
			buf.WriteString(`,"boost":`)
			if err := writeJSON(&buf, doc.Boost); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeDocument(buf *bytes.Buffer, doc *domain.Document) error {
	buf.WriteByte('{')
	for i, f := range doc.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(buf, f.Name); err != nil {
			return err
		}
		buf.WriteByte(':')

		if f.Boost != 0 {
			buf.WriteString(`{"value":`)
		}
		if err := writeValue(buf, f.Value); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if f.Boost != 0 {
			buf.WriteString(`,"boost":`)
			if err := writeJSON(buf, f.Boost); err != nil {
				return err
			}
			buf.WriteByte('}')
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case *domain.Document:
		if val == nil {
			buf.WriteString("null")
			return nil
		}
		return writeDocument(buf, val)
	case []*domain.Document:
		buf.WriteByte('[')
		for i, nested := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, nested); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case time.Time:
		return writeJSON(buf, val.UTC().Format(time.RFC3339Nano))
	case *time.Time:
		if val == nil {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, val.UTC().Format(time.RFC3339Nano))
	default:
		return writeJSON(buf, v)
	}
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// decodeDocument reads one JSON object into a document, keeping field order.
// Objects become nested documents; arrays of objects become document lists.
func decodeDocument(raw []byte) (*domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	return readObject(dec)
}

// readObject reads the members of an object whose opening brace was consumed.
func readObject(dec *json.Decoder) (*domain.Document, error) {
	doc := domain.NewDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected field name, got %v", tok)
		}
		value, err := readValue(dec)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		doc.Set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		default:
			return nil, fmt.Errorf("unexpected %v", t)
		}
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}

func readArray(dec *json.Decoder) (any, error) {
	var (
		values []any
		docs   []*domain.Document
	)
	for dec.More() {
		v, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		if d, ok := v.(*domain.Document); ok {
			docs = append(docs, d)
			continue
		}
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	switch {
	case len(docs) > 0 && len(values) > 0:
		return nil, fmt.Errorf("mixed documents and scalars in array")
	case len(docs) > 0:
		return docs, nil
	case values == nil:
		return []any{}, nil
	default:
		return values, nil
	}
}

// selectResponse is the part of a select response the client reads.
type selectResponse struct {
	Response struct {
		NumFound int64             `json:"numFound"`
		Docs     []json.RawMessage `json:"docs"`
	} `json:"response"`
}

// errorResponse is the error body Solr returns with non-2xx statuses.
type errorResponse struct {
	Error struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"error"`
}

func decodeSelect(r io.Reader) ([]*domain.Document, error) {
	var resp selectResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	docs := make([]*domain.Document, 0, len(resp.Response.Docs))
	for i, raw := range resp.Response.Docs {
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
