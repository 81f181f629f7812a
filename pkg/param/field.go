package param

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Kind is the value type a field holds.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStrings
	KindAny
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStrings:
		return "strings"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field declares one field of an Object.
type Field struct {
	Name     string
	Kind     Kind
	Default  any
	Readonly bool
	Nullable bool

	// Pattern constrains string values. Ignored for other kinds.
	Pattern *regexp.Regexp

	Doc string
}

// String declares a string field.
func String(name, def string) Field {
	return Field{Name: name, Kind: KindString, Default: def}
}

// Bool declares a bool field.
func Bool(name string, def bool) Field {
	return Field{Name: name, Kind: KindBool, Default: def}
}

// Int declares an int field.
func Int(name string, def int) Field {
	return Field{Name: name, Kind: KindInt, Default: def}
}

// Float declares a float64 field.
func Float(name string, def float64) Field {
	return Field{Name: name, Kind: KindFloat, Default: def}
}

// Strings declares a []string field.
func Strings(name string, def ...string) Field {
	return Field{Name: name, Kind: KindStrings, Default: append([]string{}, def...)}
}

// Any declares an untyped field. Values are stored as given.
func Any(name string, def any) Field {
	return Field{Name: name, Kind: KindAny, Default: def, Nullable: true}
}

// Match constrains a string field to values matching expr.
// It panics if expr does not compile.
func (f Field) Match(expr string) Field {
	f.Pattern = regexp.MustCompile(expr)
	return f
}

// ReadOnly marks the field as settable only through ForceMany.
func (f Field) ReadOnly() Field {
	f.Readonly = true
	return f
}

// AllowNil lets the field hold nil.
func (f Field) AllowNil() Field {
	f.Nullable = true
	return f
}

// Describe attaches documentation to the field.
func (f Field) Describe(doc string) Field {
	f.Doc = doc
	return f
}

// coerce converts v to the field's kind and checks its constraints.
// Strings are parsed into scalar kinds; for a []string holding several
// values, the last one wins.
func (f Field) coerce(v any) (any, error) {
	if v == nil {
		if f.Nullable || f.Kind == KindAny {
			return nil, nil
		}
		return nil, fmt.Errorf("nil is not allowed")
	}

	if f.Kind == KindStrings {
		switch val := v.(type) {
		case []string:
			return append([]string{}, val...), nil
		case string:
			return []string{val}, nil
		default:
			return nil, fmt.Errorf("expected strings, got %T", v)
		}
	}

	if list, ok := v.([]string); ok && f.Kind != KindAny {
		if len(list) == 0 {
			return nil, fmt.Errorf("expected a single %s, got an empty list", f.Kind)
		}
		v = list[len(list)-1]
	}

	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", v)
		}
		if f.Pattern != nil && !f.Pattern.MatchString(s) {
			return nil, fmt.Errorf("must match %s", f.Pattern)
		}
		return s, nil

	case KindBool:
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			return strconv.ParseBool(val)
		}

	case KindInt:
		switch val := v.(type) {
		case int:
			return val, nil
		case int8:
			return int(val), nil
		case int16:
			return int(val), nil
		case int32:
			return int(val), nil
		case int64:
			return int(val), nil
		case uint8:
			return int(val), nil
		case uint16:
			return int(val), nil
		case uint32:
			if uint64(val) > math.MaxInt {
				return nil, fmt.Errorf("%d overflows int", val)
			}
			return int(val), nil
		case uint:
			if uint64(val) > math.MaxInt {
				return nil, fmt.Errorf("%d overflows int", val)
			}
			return int(val), nil
		case uint64:
			if val > math.MaxInt {
				return nil, fmt.Errorf("%d overflows int", val)
			}
			return int(val), nil
		case string:
			i, err := strconv.ParseInt(val, 10, 0)
			if err != nil {
				return nil, err
			}
			return int(i), nil
		}

	case KindFloat:
		switch val := v.(type) {
		case float64:
			return val, nil
		case float32:
			return float64(val), nil
		case int:
			return float64(val), nil
		case int64:
			return float64(val), nil
		case string:
			return strconv.ParseFloat(val, 64)
		}

	case KindAny:
		return v, nil
	}

	return nil, fmt.Errorf("expected %s, got %T", f.Kind, v)
}
