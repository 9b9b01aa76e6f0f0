package bluelua

import (
	"fmt"
	"math"
	"reflect"

	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/bluelua/host"
)

// CallFunction calls the function on the stack with a host parameter block.
//
// The callable, and the receiver when withSelf is set, must already be on
// the stack. The non-return parameters of sig are pushed after them, the call
// runs in protected mode and all results are discarded. With a nil sig every
// slot of params is pushed according to its Go type.
func (s *State) CallFunction(sig *host.Function, params host.Params, withSelf bool) error {
	nargs := 0
	if withSelf {
		nargs = 1
	}

	if sig == nil {
		for _, v := range params {
			s.pushAny(s.L, v)
			nargs++
		}
	} else {
		if len(params) != len(sig.Params) {
			return fmt.Errorf("bluelua: call %s: %w: expected %d, got %d", sig.Name, host.ErrParamCount, len(sig.Params), len(params))
		}
		for i, prop := range sig.Params {
			if prop.Return {
				continue
			}
			s.pushValue(s.L, prop.Kind, params[i])
			nargs++
		}
	}

	if err := s.L.PCall(nargs, 0, nil); err != nil {
		if sig == nil {
			return fmt.Errorf("bluelua: call: %w", err)
		}
		return fmt.Errorf("bluelua: call %s: %w", sig.Name, err)
	}
	return nil
}

// pushValue pushes a parameter value of the given kind.
func (s *State) pushValue(L *lua.LState, kind host.Kind, v any) {
	switch kind {
	case host.KindBool:
		if b, ok := v.(bool); ok {
			L.Push(lua.LBool(b))
			return
		}
	case host.KindInt, host.KindFloat:
		if n, ok := toNumber(v); ok {
			L.Push(lua.LNumber(n))
			return
		}
	case host.KindString:
		if str, ok := v.(string); ok {
			L.Push(lua.LString(str))
			return
		}
	case host.KindObject:
		if obj, ok := v.(host.Object); ok || v == nil {
			s.pushObject(L, obj)
			return
		}
	}
	s.pushAny(L, v)
}

// pushAny pushes a Go value according to its dynamic type.
func (s *State) pushAny(L *lua.LState, v any) {
	switch val := v.(type) {
	case nil:
		L.Push(lua.LNil)
	case bool:
		L.Push(lua.LBool(val))
	case string:
		L.Push(lua.LString(val))
	case host.Object:
		s.pushObject(L, val)
	case lua.LValue:
		L.Push(val)
	default:
		if n, ok := toNumber(v); ok {
			L.Push(lua.LNumber(n))
			return
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			tbl := L.CreateTable(rv.Len(), 0)
			for i := 0; i < rv.Len(); i++ {
				s.pushAny(L, rv.Index(i).Interface())
				tbl.RawSetInt(i+1, L.Get(-1))
				L.Pop(1)
			}
			L.Push(tbl)
		case reflect.Map:
			tbl := L.CreateTable(0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				s.pushAny(L, iter.Value().Interface())
				tbl.RawSetString(fmt.Sprint(iter.Key().Interface()), L.Get(-1))
				L.Pop(1)
			}
			L.Push(tbl)
		default:
			L.Push(lua.LString(fmt.Sprintf("%v", v)))
		}
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case lua.LNumber:
		return float64(n), true
	}
	return 0, false
}

// ArgError reports a stack argument that does not fit its parameter.
type ArgError struct {
	Index int // stack index
	Param string
	Msg   string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("bad argument #%d (%s): %s", e.Index, e.Param, e.Msg)
}

// ToParams reads the non-return parameters of fn from the stack of L, starting
// at index first, into a new parameter block. Missing trailing arguments are
// read as nil.
func ToParams(L *lua.LState, fn *host.Function, first int) (host.Params, error) {
	params := fn.NewParams()
	idx := first
	for i, prop := range fn.Params {
		if prop.Return {
			continue
		}
		v, err := toValue(prop.Kind, L.Get(idx))
		if err != nil {
			return nil, &ArgError{Index: idx, Param: prop.Name, Msg: err.Error()}
		}
		params[i] = v
		idx++
	}
	return params, nil
}

// toValue converts a Lua value to the canonical host representation of kind.
func toValue(kind host.Kind, lv lua.LValue) (any, error) {
	switch kind {
	case host.KindBool:
		return lua.LVAsBool(lv), nil

	case host.KindInt:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return nil, fmt.Errorf("number expected, got %s", lv.Type())
		}
		f := float64(n)
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("number has no integer representation")
		}
		return int64(f), nil

	case host.KindFloat:
		n, ok := lv.(lua.LNumber)
		if !ok {
			return nil, fmt.Errorf("number expected, got %s", lv.Type())
		}
		return float64(n), nil

	case host.KindString:
		switch v := lv.(type) {
		case lua.LString:
			return string(v), nil
		case lua.LNumber:
			return v.String(), nil
		}
		return nil, fmt.Errorf("string expected, got %s", lv.Type())

	case host.KindObject:
		if lv == lua.LNil {
			return nil, nil
		}
		obj := objectOf(lv)
		if obj == nil {
			return nil, fmt.Errorf("host object expected, got %s", lv.Type())
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported parameter kind %s", kind)
}

// pushReturns pushes the return parameters of fn and returns how many were pushed.
func (s *State) pushReturns(L *lua.LState, fn *host.Function, params host.Params) int {
	n := 0
	for i, prop := range fn.Params {
		if !prop.Return {
			continue
		}
		s.pushValue(L, prop.Kind, params[i])
		n++
	}
	return n
}
