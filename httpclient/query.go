package httpclient

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Param is one query parameter. Value may be a scalar, a pointer, or a
// slice or array of scalars.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered query parameter list. Keys may repeat.
type Params []Param

// Add appends a parameter and returns the list.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// ParamsFromMap builds Params from m with keys in sorted order.
func ParamsFromMap(m map[string]any) Params {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make(Params, 0, len(keys))
	for _, k := range keys {
		out = append(out, Param{Key: k, Value: m[k]})
	}
	return out
}

// EncodeQuery serializes params into a query string with a leading "?".
// Parameters whose value is nil, a nil pointer, "", "null" or "undefined"
// are dropped. Slices emit one pair per valid element. A scalar whose text
// contains commas is split into one pair per non-empty trimmed segment.
// The result is "" when no pair survives.
func EncodeQuery(params Params) string {
	if len(params) == 0 {
		return ""
	}

	pairs := make([][2]string, 0, len(params))
	for _, p := range params {
		pairs = appendParam(pairs, p.Key, p.Value)
	}

	var b strings.Builder
	for _, kv := range pairs {
		if invalidText(kv[1]) {
			continue
		}
		if b.Len() == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

func appendParam(pairs [][2]string, key string, value any) [][2]string {
	v, ok := deref(value)
	if !ok {
		return pairs
	}

	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return appendScalar(pairs, key, v)
		}
		for i := range v.Len() {
			ev, ok := deref(v.Index(i).Interface())
			if !ok {
				continue
			}
			if s, ok := formatValue(ev); ok {
				pairs = append(pairs, [2]string{key, s})
			}
		}
		return pairs
	}
	return appendScalar(pairs, key, v)
}

func appendScalar(pairs [][2]string, key string, v reflect.Value) [][2]string {
	s, ok := formatValue(v)
	if !ok {
		return pairs
	}
	if !strings.Contains(s, ",") {
		return append(pairs, [2]string{key, s})
	}
	for seg := range strings.SplitSeq(s, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			pairs = append(pairs, [2]string{key, seg})
		}
	}
	return pairs
}

// deref unwraps interfaces and pointers. It reports false for nil.
func deref(value any) (reflect.Value, bool) {
	if value == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, true
}

// formatValue renders a scalar. It reports false for invalid values and
// for kinds that have no query representation.
func formatValue(v reflect.Value) (string, bool) {
	if v.CanInterface() {
		switch t := v.Interface().(type) {
		case time.Time:
			return t.Format(time.RFC3339), true
		case fmt.Stringer:
			s := t.String()
			return s, !invalidText(s)
		}
	}

	var s string
	switch v.Kind() {
	case reflect.String:
		s = v.String()
	case reflect.Bool:
		s = strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s = strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		s = strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		s = strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		s = strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Slice, reflect.Array:
		// []byte
		if v.Type().Elem().Kind() != reflect.Uint8 {
			return "", false
		}
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		s = string(b)
	default:
		return "", false
	}
	return s, !invalidText(s)
}

func invalidText(s string) bool {
	return s == "" || s == "null" || s == "undefined"
}
