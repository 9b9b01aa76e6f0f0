package host

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNoNative is returned when a function without a native implementation
	// reaches the default event handler.
	ErrNoNative = errors.New("function has no native implementation")

	// ErrDestroyed is returned when an event is processed on a destroyed object.
	ErrDestroyed = errors.New("object is destroyed")

	// ErrParamCount is returned when a parameter block does not match its layout.
	ErrParamCount = errors.New("parameter block does not match function layout")

	// ErrParamType is returned by natives when a parameter has the wrong type.
	ErrParamType = errors.New("parameter has the wrong type")
)

// Object is a host object managed by a World.
//
// Implementations embed Base, which supplies every method. Types that want to
// intercept events override ProcessEvent; types that hold resources override
// BeginDestroy and call the embedded Base.BeginDestroy last.
type Object interface {
	ID() uuid.UUID
	Name() string
	Class() *Class
	Outer() Object
	World() *World
	IsValid() bool

	// ProcessEvent delivers a function call to the object.
	ProcessEvent(fn *Function, params Params) error

	// BeginDestroy is called once by World.Destroy before the object is
	// removed from the world.
	BeginDestroy()

	// Multicast returns the named multicast delegate property, or nil.
	Multicast(name string) *MulticastDelegate

	header() *Base
}

// Base is the common header of every host object.
type Base struct {
	id         uuid.UUID
	name       string
	class      *Class
	outer      Object
	world      *World
	self       Object
	valid      bool
	multicasts map[string]*MulticastDelegate
}

func (b *Base) header() *Base { return b }

// ID returns the object's unique identifier.
func (b *Base) ID() uuid.UUID { return b.id }

// Name returns the object's name, unique within its world.
func (b *Base) Name() string { return b.name }

// Class returns the object's class.
func (b *Base) Class() *Class { return b.class }

// Outer returns the object this one was created under, or nil for top level objects.
func (b *Base) Outer() Object { return b.outer }

// World returns the world that owns the object.
func (b *Base) World() *World { return b.world }

// IsValid reports whether the object is alive.
func (b *Base) IsValid() bool { return b != nil && b.valid }

// Multicast returns the named multicast delegate property, or nil if the class
// declares none.
func (b *Base) Multicast(name string) *MulticastDelegate {
	return b.multicasts[name]
}

// ProcessEvent runs the function's native implementation against the object.
func (b *Base) ProcessEvent(fn *Function, params Params) error {
	if fn == nil {
		return fmt.Errorf("%s: process event: nil function", b.name)
	}
	if !b.valid {
		return fmt.Errorf("%s.%s: %w", b.name, fn.Name, ErrDestroyed)
	}
	if fn.Native == nil {
		return fmt.Errorf("%s.%s: %w", b.name, fn.Name, ErrNoNative)
	}
	if len(params) != len(fn.Params) {
		return fmt.Errorf("%s.%s: %w: expected %d, got %d", b.name, fn.Name, ErrParamCount, len(fn.Params), len(params))
	}
	return fn.Native(b.self, params)
}

// BeginDestroy is the default destruction hook. It clears the object's
// delegate properties.
func (b *Base) BeginDestroy() {
	for _, md := range b.multicasts {
		md.Clear()
	}
}

func (b *Base) String() string {
	return fmt.Sprintf("%s(%s)", b.class.String(), b.name)
}

// objectPtr constrains NewObject's type parameter to pointers implementing Object.
type objectPtr[T any] interface {
	*T
	Object
}

// NewObject creates an object of type T under outer and registers it with the
// world. An empty name generates one from the class name.
//
//	type Door struct{ host.Base }
//	door := host.NewObject[Door](world, nil, DoorClass, "FrontDoor")
func NewObject[T any, PT objectPtr[T]](w *World, outer Object, class *Class, name string) PT {
	obj := PT(new(T))
	b := obj.header()
	b.id = uuid.New()
	b.class = class
	b.outer = outer
	b.world = w
	b.self = obj
	b.valid = true
	b.multicasts = make(map[string]*MulticastDelegate)
	for prop, sig := range class.multicastNames() {
		b.multicasts[prop] = NewMulticastDelegate(sig)
	}
	b.name = w.add(obj, name)
	return obj
}
