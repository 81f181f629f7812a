package location

import "sort"

// FieldKey maps one object field to one query key.
type FieldKey struct {
	Field string
	Key   string
}

// FieldMap is an ordered field to query key mapping.
type FieldMap []FieldKey

// Fields maps each named field to a query key of the same name.
func Fields(names ...string) FieldMap {
	fm := make(FieldMap, 0, len(names))
	for _, n := range names {
		fm = append(fm, FieldKey{Field: n, Key: n})
	}
	return fm
}

// Rename maps fields to explicitly named query keys, ordered by field name.
func Rename(m map[string]string) FieldMap {
	fm := make(FieldMap, 0, len(m))
	for field, key := range m {
		fm = append(fm, FieldKey{Field: field, Key: key})
	}
	sort.Slice(fm, func(i, j int) bool { return fm[i].Field < fm[j].Field })
	return fm
}

// Key returns the query key of field.
func (fm FieldMap) Key(field string) (string, bool) {
	for _, fk := range fm {
		if fk.Field == field {
			return fk.Key, true
		}
	}
	return "", false
}

// FieldNames returns the mapped field names in order.
func (fm FieldMap) FieldNames() []string {
	names := make([]string, len(fm))
	for i, fk := range fm {
		names[i] = fk.Field
	}
	return names
}

// inverse returns query key to field. When several fields share a key the
// last one wins.
func (fm FieldMap) inverse() map[string]string {
	inv := make(map[string]string, len(fm))
	for _, fk := range fm {
		inv[fk.Key] = fk.Field
	}
	return inv
}
