package querycodec

import (
	"fmt"
	"reflect"
	"strconv"
)

// Format renders a Go value as one or more query values. It returns false
// for nil, which callers treat as "omit this key". Slices and arrays produce
// one value per element.
func Format(v any) ([]string, bool) {
	if v == nil {
		return nil, false
	}

	switch val := v.(type) {
	case string:
		return []string{val}, true
	case []string:
		return append([]string(nil), val...), true
	case fmt.Stringer:
		return []string{val.String()}, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return Format(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, false
		}
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, formatScalar(rv.Index(i)))
		}
		return parts, true
	default:
		return []string{formatScalar(rv)}, true
	}
}

func formatScalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Interface:
		if v.IsNil() {
			return ""
		}
		return formatScalar(v.Elem())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
