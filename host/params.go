package host

import (
	"fmt"
	"strconv"
)

// BuildParams converts loosely typed arguments into a parameter block for fn.
//
// args are matched in order against the non-return parameters. Object
// parameters accept an Object, nil, or a name looked up with resolve.
// Return slots are left nil.
func BuildParams(fn *Function, args []any, resolve func(name string) Object) (Params, error) {
	if n := fn.NumArgs(); len(args) != n {
		return nil, fmt.Errorf("%s: %w: expected %d arguments, got %d", fn.Name, ErrParamCount, n, len(args))
	}

	params := fn.NewParams()
	next := 0
	for i, prop := range fn.Params {
		if prop.Return {
			continue
		}
		v, err := Coerce(prop.Kind, args[next], resolve)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %q: %w", fn.Name, prop.Name, err)
		}
		params[i] = v
		next++
	}
	return params, nil
}

// Coerce converts v to the canonical Go representation of kind.
func Coerce(kind Kind, v any, resolve func(name string) Object) (any, error) {
	switch kind {
	case KindBool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}

	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == float64(int64(n)) {
				return int64(n), nil
			}
			return nil, fmt.Errorf("expected integer but got %v", n)
		case string:
			return strconv.ParseInt(n, 10, 64)
		}

	case KindFloat:
		switch n := v.(type) {
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		case string:
			return strconv.ParseFloat(n, 64)
		}

	case KindString:
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		default:
			return fmt.Sprint(v), nil
		}

	case KindObject:
		switch o := v.(type) {
		case nil:
			return nil, nil
		case Object:
			return o, nil
		case string:
			if resolve == nil {
				return nil, fmt.Errorf("cannot resolve object %q", o)
			}
			obj := resolve(o)
			if obj == nil {
				return nil, fmt.Errorf("unknown object %q", o)
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("expected %s but got %T", kind, v)
}
