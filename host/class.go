package host

import (
	"fmt"
	"slices"
	"sync"
)

// Kind identifies how a parameter value is represented in a parameter block.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("host.Kind(%d)", int(k))
	}
}

// Property describes one slot of a function's parameter block.
type Property struct {
	Name   string
	Kind   Kind
	Return bool // written by the callee instead of read
}

// Params is a raw parameter block. Slot i holds the value of Function.Params[i].
//
// Values are bool, int64, float64, string or Object according to the
// property kind.
type Params []any

// NativeFunc implements a host function. Return properties are written back
// into params.
type NativeFunc func(self Object, params Params) error

// Function is a reflected host function: a name, a parameter layout and an
// optional native implementation.
//
// Functions without a native implementation are signatures only; they describe
// the parameter block a delegate hands to its targets.
type Function struct {
	Name   string
	Params []Property
	Native NativeFunc
}

// NewParams allocates a parameter block sized for the function.
func (f *Function) NewParams() Params {
	if f == nil {
		return nil
	}
	return make(Params, len(f.Params))
}

// NumArgs returns the number of non-return parameters.
func (f *Function) NumArgs() int {
	if f == nil {
		return 0
	}
	n := 0
	for _, p := range f.Params {
		if !p.Return {
			n++
		}
	}
	return n
}

// GetName returns the function name, or "" for a nil function.
func (f *Function) GetName() string {
	if f == nil {
		return ""
	}
	return f.Name
}

// Class is the reflected type of a host object.
type Class struct {
	Name  string
	Super *Class

	mu         sync.RWMutex
	functions  map[string]*Function
	multicasts map[string]*Function // delegate name -> signature
}

// ObjectClass is the root of every class hierarchy.
var ObjectClass = NewClass("Object", nil)

// NewClass creates a class deriving from super and declaring the given functions.
func NewClass(name string, super *Class, functions ...*Function) *Class {
	c := &Class{
		Name:       name,
		Super:      super,
		functions:  make(map[string]*Function),
		multicasts: make(map[string]*Function),
	}
	for _, fn := range functions {
		c.functions[fn.Name] = fn
	}
	return c
}

// AddFunction declares a function on the class, replacing any previous
// declaration with the same name.
func (c *Class) AddFunction(fn *Function) *Class {
	c.mu.Lock()
	c.functions[fn.Name] = fn
	c.mu.Unlock()
	return c
}

// AddMulticast declares a multicast delegate property with the given signature.
func (c *Class) AddMulticast(name string, signature *Function) *Class {
	c.mu.Lock()
	c.multicasts[name] = signature
	c.mu.Unlock()
	return c
}

// FindFunction looks a function up on the class and its super classes.
func (c *Class) FindFunction(name string) *Function {
	for cls := c; cls != nil; cls = cls.Super {
		cls.mu.RLock()
		fn, ok := cls.functions[name]
		cls.mu.RUnlock()
		if ok {
			return fn
		}
	}
	return nil
}

// FindMulticast returns the signature of a multicast delegate property.
func (c *Class) FindMulticast(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		cls.mu.RLock()
		sig, ok := cls.multicasts[name]
		cls.mu.RUnlock()
		if ok {
			return sig, true
		}
	}
	return nil, false
}

// multicastNames returns every multicast property declared along the super chain.
func (c *Class) multicastNames() map[string]*Function {
	out := make(map[string]*Function)
	for cls := c; cls != nil; cls = cls.Super {
		cls.mu.RLock()
		for name, sig := range cls.multicasts {
			if _, shadowed := out[name]; !shadowed {
				out[name] = sig
			}
		}
		cls.mu.RUnlock()
	}
	return out
}

// FunctionNames returns the names of every function declared along the super
// chain, sorted.
func (c *Class) FunctionNames() []string {
	seen := make(map[string]bool)
	for cls := c; cls != nil; cls = cls.Super {
		cls.mu.RLock()
		for name := range cls.functions {
			seen[name] = true
		}
		cls.mu.RUnlock()
	}
	return sortedKeys(seen)
}

// MulticastNames returns the names of every multicast delegate property, sorted.
func (c *Class) MulticastNames() []string {
	seen := make(map[string]bool)
	for name := range c.multicastNames() {
		seen[name] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// IsChildOf reports whether c is other or derives from it.
func (c *Class) IsChildOf(other *Class) bool {
	for cls := c; cls != nil; cls = cls.Super {
		if cls == other {
			return true
		}
	}
	return false
}

func (c *Class) String() string {
	if c == nil {
		return "<nil class>"
	}
	return c.Name
}
