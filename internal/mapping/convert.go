package mapping

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// DocumentFromMap builds a document from a decoded map. Keys are added in
// sorted order. Nested maps are kept as-is and converted when read back.
func DocumentFromMap(m map[string]any) *domain.Document {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := domain.NewDocument()
	for _, k := range keys {
		doc.Set(k, m[k])
	}
	return doc
}

// asDocuments interprets a nested field value. It returns the documents it
// holds, whether the value was a list, and false if it is not a document shape.
func asDocuments(v any) ([]*domain.Document, bool, bool) {
	switch val := v.(type) {
	case *domain.Document:
		return []*domain.Document{val}, false, true
	case map[string]any:
		return []*domain.Document{DocumentFromMap(val)}, false, true
	case []*domain.Document:
		return val, true, true
	case []map[string]any:
		docs := make([]*domain.Document, 0, len(val))
		for _, m := range val {
			docs = append(docs, DocumentFromMap(m))
		}
		return docs, true, true
	case []any:
		docs := make([]*domain.Document, 0, len(val))
		for _, item := range val {
			nested, list, ok := asDocuments(item)
			if !ok || list {
				return nil, false, false
			}
			docs = append(docs, nested...)
		}
		return docs, true, true
	default:
		return nil, false, false
	}
}

// Assign stores v into dst with the coercions used by ToEntity. Record
// repositories use it to load column values into struct fields.
func Assign(dst reflect.Value, v any) error {
	return assign(dst, v)
}

// assign stores v into dst, coercing the representations index servers
// return: JSON numbers, RFC 3339 timestamps and single-valued arrays.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	src := reflect.ValueOf(v)

	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	if src.Kind() == reflect.Ptr {
		if src.IsNil() {
			return nil
		}
		return assign(dst, src.Elem().Interface())
	}

	if dst.Type() == timeType {
		return assignTime(dst, v)
	}

	if dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() != reflect.Uint8 {
		return assignSlice(dst, src)
	}

	if src.Kind() == reflect.Slice && src.Type().Elem().Kind() != reflect.Uint8 {
		switch src.Len() {
		case 0:
			return nil
		case 1:
			return assign(dst, src.Index(0).Interface())
		default:
			return fmt.Errorf("cannot store %d values in %s", src.Len(), dst.Type())
		}
	}

	if n, ok := v.(json.Number); ok {
		v = n.String()
		src = reflect.ValueOf(v)
	}

	switch dst.Kind() {
	case reflect.String:
		if src.Kind() == reflect.String {
			dst.SetString(src.String())
			return nil
		}
		dst.SetString(fmt.Sprint(v))
		return nil

	case reflect.Bool:
		switch src.Kind() {
		case reflect.Bool:
			dst.SetBool(src.Bool())
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			dst.SetBool(src.Int() != 0)
			return nil
		case reflect.String:
			b, err := strconv.ParseBool(src.String())
			if err != nil {
				return fmt.Errorf("cannot parse %q as bool", src.String())
			}
			dst.SetBool(b)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(src)
		if err != nil {
			return err
		}
		if dst.OverflowInt(i) {
			return fmt.Errorf("value %d overflows %s", i, dst.Type())
		}
		dst.SetInt(i)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toInt64(src)
		if err != nil {
			return err
		}
		if i < 0 || dst.OverflowUint(uint64(i)) {
			return fmt.Errorf("value %d overflows %s", i, dst.Type())
		}
		dst.SetUint(uint64(i))
		return nil

	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		if dst.OverflowFloat(f) {
			return fmt.Errorf("value %v overflows %s", f, dst.Type())
		}
		dst.SetFloat(f)
		return nil
	}

	if src.Type().ConvertibleTo(dst.Type()) && src.Kind() == dst.Kind() {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot store %T in %s", v, dst.Type())
}

// timeLayouts are tried in order when a timestamp arrives as a string.
// The last two are the forms SQLite stores.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func assignTime(dst reflect.Value, v any) error {
	switch t := v.(type) {
	case time.Time:
		dst.Set(reflect.ValueOf(t))
		return nil
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				dst.Set(reflect.ValueOf(parsed))
				return nil
			}
		}
		return fmt.Errorf("cannot parse %q as time", t)
	default:
		return fmt.Errorf("cannot store %T in time.Time", v)
	}
}

func assignSlice(dst, src reflect.Value) error {
	if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
		out := reflect.MakeSlice(dst.Type(), 1, 1)
		if err := assign(out.Index(0), src.Interface()); err != nil {
			return err
		}
		dst.Set(out)
		return nil
	}
	out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
	for i := 0; i < src.Len(); i++ {
		if err := assign(out.Index(i), src.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	dst.Set(out)
	return nil
}

func toInt64(src reflect.Value) (int64, error) {
	switch src.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return src.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := src.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := src.Float()
		// float64(math.MaxInt64) rounds up to 2^63, so the bound is exclusive.
		if f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
			return 0, fmt.Errorf("value %v is not an integer", f)
		}
		return int64(f), nil
	case reflect.String:
		i, err := strconv.ParseInt(src.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as integer", src.String())
		}
		return i, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to integer", src.Type())
	}
}

func toFloat64(src reflect.Value) (float64, error) {
	switch src.Kind() {
	case reflect.Float32, reflect.Float64:
		return src.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(src.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(src.Uint()), nil
	case reflect.String:
		f, err := strconv.ParseFloat(src.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float", src.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %s to float", src.Type())
	}
}
