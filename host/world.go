package host

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// World owns the lifetime of host objects.
//
// Objects are created with NewObject and live until they, or an object they
// were created under, are destroyed with Destroy.
type World struct {
	mu        sync.RWMutex
	objects   map[uuid.UUID]Object
	byName    map[string]Object
	inners    map[uuid.UUID][]Object // outer id -> objects created under it, in creation order
	counters  map[string]int         // class name -> next generated name suffix
	listeners map[int]func(Object)
	nextID    int
	logger    *slog.Logger
}

// NewWorld creates an empty world. A nil logger uses slog.Default().
func NewWorld(logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		objects:   make(map[uuid.UUID]Object),
		byName:    make(map[string]Object),
		inners:    make(map[uuid.UUID][]Object),
		counters:  make(map[string]int),
		listeners: make(map[int]func(Object)),
		logger:    logger,
	}
}

// Logger returns the world's logger.
func (w *World) Logger() *slog.Logger {
	return w.logger
}

// add registers a freshly constructed object and returns its final name.
func (w *World) add(obj Object, name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if name == "" || w.byName[name] != nil {
		base := name
		if base == "" {
			base = obj.Class().Name
		}
		for {
			counter := w.counters[base]
			w.counters[base] = counter + 1
			candidate := fmt.Sprintf("%s_%d", base, counter)
			if w.byName[candidate] == nil {
				name = candidate
				break
			}
		}
	}

	w.objects[obj.ID()] = obj
	w.byName[name] = obj
	if outer := obj.Outer(); outer != nil {
		w.inners[outer.ID()] = append(w.inners[outer.ID()], obj)
	}
	return name
}

// Find returns the live object with the given name.
func (w *World) Find(name string) Object {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.byName[name]
}

// Lookup returns the live object with the given id.
func (w *World) Lookup(id uuid.UUID) Object {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.objects[id]
}

// Len returns the number of live objects.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

// Inners returns the live objects created under outer.
func (w *World) Inners(outer Object) []Object {
	w.mu.RLock()
	defer w.mu.RUnlock()
	inners := w.inners[outer.ID()]
	out := make([]Object, len(inners))
	copy(out, inners)
	return out
}

// OnDestroy registers fn to be called after an object is destroyed.
// The returned function removes the listener.
func (w *World) OnDestroy(fn func(Object)) (remove func()) {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

// Destroy destroys obj and every object created under it. Inner objects are
// destroyed first, most recently created first. Destroying an object twice is
// a no-op.
func (w *World) Destroy(obj Object) {
	if obj == nil || !obj.IsValid() {
		return
	}

	for _, inner := range reversed(w.Inners(obj)) {
		w.Destroy(inner)
	}

	obj.BeginDestroy()

	w.mu.Lock()
	obj.header().valid = false
	delete(w.objects, obj.ID())
	if w.byName[obj.Name()] == obj {
		delete(w.byName, obj.Name())
	}
	delete(w.inners, obj.ID())
	if outer := obj.Outer(); outer != nil {
		w.inners[outer.ID()] = without(w.inners[outer.ID()], obj)
	}
	listeners := make([]func(Object), 0, len(w.listeners))
	for _, fn := range w.listeners {
		listeners = append(listeners, fn)
	}
	w.mu.Unlock()

	w.logger.Debug("object destroyed", slog.String("object", obj.Name()), slog.String("class", obj.Class().Name))
	for _, fn := range listeners {
		fn(obj)
	}
}

// Close destroys every object in the world.
func (w *World) Close() {
	w.mu.RLock()
	var roots []Object
	for _, obj := range w.objects {
		if obj.Outer() == nil || !obj.Outer().IsValid() {
			roots = append(roots, obj)
		}
	}
	w.mu.RUnlock()

	for _, obj := range roots {
		w.Destroy(obj)
	}
}

func reversed(objs []Object) []Object {
	for i, j := 0, len(objs)-1; i < j; i, j = i+1, j-1 {
		objs[i], objs[j] = objs[j], objs[i]
	}
	return objs
}

func without(objs []Object, obj Object) []Object {
	out := objs[:0]
	for _, o := range objs {
		if o != obj {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
