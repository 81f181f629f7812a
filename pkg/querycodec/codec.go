// Package querycodec parses and encodes URL query strings while keeping
// the order in which keys first appear.
//
// Values are string for a key that appears once, []string for a repeated
// key, or nil. Nil values survive merging but are never encoded:
//
//	q := querycodec.Parse("?color=blue&tag=a&tag=b")
//	q.Set("size", "m")
//	q.Set("color", nil)
//	querycodec.Search(q) // "?tag=a&tag=b&size=m"
package querycodec

import (
	"net/url"
	"sort"
	"strings"
)

// Query is an ordered mapping of query keys to values.
// The zero value is not usable; use New or Parse.
type Query struct {
	keys   []string
	values map[string]any
}

// New returns an empty query.
func New() *Query {
	return &Query{values: make(map[string]any)}
}

// FromMap builds a query from m. Keys are added in sorted order since map
// iteration order is unspecified.
func FromMap(m map[string]any) *Query {
	q := New()
	q.Update(m)
	return q
}

// Parse decodes a search string. A single leading '?' is ignored, '+' and
// percent escapes are decoded, and undecodable text is kept verbatim. A key
// without '=' maps to the empty string, and "=v" yields the empty key.
func Parse(search string) *Query {
	q := New()
	search = strings.TrimPrefix(search, "?")

	for _, part := range strings.Split(search, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		q.add(unescape(rawKey), unescape(rawValue))
	}

	return q
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// add appends value to key, promoting a single string to []string on repeat.
func (q *Query) add(key, value string) {
	existing, ok := q.values[key]
	if !ok {
		q.Set(key, value)
		return
	}
	switch v := existing.(type) {
	case string:
		q.values[key] = []string{v, value}
	case []string:
		q.values[key] = append(v, value)
	default:
		q.values[key] = value
	}
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (q *Query) Set(key string, value any) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = value
}

// Get returns the value stored under key.
func (q *Query) Get(key string) (any, bool) {
	if q == nil {
		return nil, false
	}
	v, ok := q.values[key]
	return v, ok
}

// Has reports whether key is present, including keys holding nil.
func (q *Query) Has(key string) bool {
	_, ok := q.Get(key)
	return ok
}

// Delete removes key.
func (q *Query) Delete(key string) {
	if _, ok := q.values[key]; !ok {
		return
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in order.
func (q *Query) Keys() []string {
	if q == nil {
		return nil
	}
	keys := make([]string, len(q.keys))
	copy(keys, q.keys)
	return keys
}

// Len returns the number of keys, including keys holding nil.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// Merge copies every entry of other into q, in other's order.
func (q *Query) Merge(other *Query) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		q.Set(k, other.values[k])
	}
}

// Update copies every entry of m into q. New keys are appended in sorted
// order.
func (q *Query) Update(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, m[k])
	}
}

// Clone returns a copy of q. Slice values are copied.
func (q *Query) Clone() *Query {
	c := New()
	if q == nil {
		return c
	}
	for _, k := range q.keys {
		v := q.values[k]
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		c.Set(k, v)
	}
	return c
}

// Map returns the entries as a plain map.
func (q *Query) Map() map[string]any {
	m := make(map[string]any, q.Len())
	if q == nil {
		return m
	}
	for k, v := range q.values {
		m[k] = v
	}
	return m
}

// String returns the encoded query without the leading '?'.
func (q *Query) String() string {
	return Encode(q)
}

// Encode renders q as key=value pairs joined by '&', in key order.
// Nil values are omitted and []string values become repeated keys.
func Encode(q *Query) string {
	if q == nil {
		return ""
	}

	var b strings.Builder
	for _, k := range q.keys {
		parts, ok := Format(q.values[k])
		if !ok {
			continue
		}
		key := url.QueryEscape(k)
		for _, p := range parts {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(p))
		}
	}
	return b.String()
}

// Search renders q as a location search string: "?" followed by the
// encoded query, or "" when nothing is left to encode.
func Search(q *Query) string {
	encoded := Encode(q)
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}
