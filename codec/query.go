package codec

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/fnmock/fnmock/internal/jsval"
)

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is an ordered set of fields. Stringify preserves its order.
type Object []Field

// Stringify encodes v as a query string. v is typically an Object or a map; nested
// objects and arrays use bracket notation. Nil values are skipped.
func Stringify(v any) string {
	var pairs []string
	for _, f := range fields(v) {
		pairs = appendPairs(pairs, f.Key, f.Value)
	}
	return strings.Join(pairs, "&")
}

func appendPairs(pairs []string, prefix string, v any) []string {
	switch t := v.(type) {
	case nil:
		return pairs
	case []any:
		for i, e := range t {
			pairs = appendPairs(pairs, prefix+"["+strconv.Itoa(i)+"]", e)
		}
		return pairs
	case Object, map[string]any:
		for _, f := range fields(t) {
			pairs = appendPairs(pairs, prefix+"["+f.Key+"]", f.Value)
		}
		return pairs
	default:
		return append(pairs, escape(prefix)+"="+escape(jsval.String(v)))
	}
}

func fields(v any) Object {
	switch t := v.(type) {
	case Object:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Object, 0, len(keys))
		for _, k := range keys {
			out = append(out, Field{Key: k, Value: t[k]})
		}
		return out
	default:
		return nil
	}
}

// escape percent-encodes s using the RFC 3986 unreserved set.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Parse decodes a query string into nested maps. Repeated keys collect into a slice,
// a[b]=c nests, and a[]=x or a[0]=x append to a slice.
func Parse(s string) map[string]any {
	out := make(map[string]any)
	s = strings.TrimPrefix(s, "?")
	for _, part := range strings.Split(s, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			key = rawKey
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			value = rawValue
		}
		assign(out, splitKey(key), value)
	}
	return out
}

// splitKey turns "a[b][0]" into ["a", "b", "0"].
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return []string{key}
	}
	path := []string{key[:open]}
	rest := key[open:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}
	return path
}

func assign(m map[string]any, path []string, value string) {
	head := path[0]
	if len(path) == 1 {
		switch existing := m[head].(type) {
		case nil:
			m[head] = value
		case []any:
			m[head] = append(existing, value)
		case string:
			m[head] = []any{existing, value}
		}
		return
	}

	next := path[1]
	if next == "" || isIndex(next) {
		list, _ := m[head].([]any)
		if len(path) == 2 {
			m[head] = append(list, value)
			return
		}
		child := make(map[string]any)
		assign(child, path[2:], value)
		m[head] = append(list, child)
		return
	}

	child, ok := m[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[head] = child
	}
	assign(child, path[1:], value)
}

func isIndex(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
