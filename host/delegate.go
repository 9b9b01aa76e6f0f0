package host

import (
	"fmt"
	"sync"
)

// Delegate is a single-cast binding of an object and one of its functions.
// The zero value is unbound.
type Delegate struct {
	Object       Object
	FunctionName string
}

// IsBound reports whether the delegate targets a live object.
func (d Delegate) IsBound() bool {
	return d.Object != nil && d.Object.IsValid() && d.FunctionName != ""
}

// Execute delivers params to the bound function. Unbound delegates do nothing.
func (d Delegate) Execute(params Params) error {
	if !d.IsBound() {
		return nil
	}
	fn := d.Object.Class().FindFunction(d.FunctionName)
	if fn == nil {
		return fmt.Errorf("%s: no function %q", d.Object.Name(), d.FunctionName)
	}
	return d.Object.ProcessEvent(fn, params)
}

// MulticastDelegate is an invocation list of delegates sharing one signature.
type MulticastDelegate struct {
	Signature *Function

	mu      sync.Mutex
	targets []Delegate
}

// NewMulticastDelegate creates an empty multicast delegate for the signature.
func NewMulticastDelegate(signature *Function) *MulticastDelegate {
	return &MulticastDelegate{Signature: signature}
}

// Add appends obj.functionName to the invocation list unless it is already there.
func (m *MulticastDelegate) Add(obj Object, functionName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.targets {
		if d.Object == obj && d.FunctionName == functionName {
			return
		}
	}
	m.targets = append(m.targets, Delegate{Object: obj, FunctionName: functionName})
}

// Remove removes obj.functionName from the invocation list.
func (m *MulticastDelegate) Remove(obj Object, functionName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.targets[:0]
	for _, d := range m.targets {
		if d.Object != obj || d.FunctionName != functionName {
			out = append(out, d)
		}
	}
	m.targets = out
}

// RemoveAll removes every binding targeting obj.
func (m *MulticastDelegate) RemoveAll(obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.targets[:0]
	for _, d := range m.targets {
		if d.Object != obj {
			out = append(out, d)
		}
	}
	m.targets = out
}

// Clear empties the invocation list.
func (m *MulticastDelegate) Clear() {
	m.mu.Lock()
	m.targets = nil
	m.mu.Unlock()
}

// IsBound reports whether any binding targets a live object.
func (m *MulticastDelegate) IsBound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.targets {
		if d.IsBound() {
			return true
		}
	}
	return false
}

// Len returns the number of bindings, live or not.
func (m *MulticastDelegate) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.targets)
}

// Broadcast executes every live binding in order. Bindings whose object has
// been destroyed are dropped. The first error is returned after every target
// has run.
func (m *MulticastDelegate) Broadcast(params Params) error {
	m.mu.Lock()
	targets := make([]Delegate, 0, len(m.targets))
	live := m.targets[:0]
	for _, d := range m.targets {
		if d.Object != nil && d.Object.IsValid() {
			targets = append(targets, d)
			live = append(live, d)
		}
	}
	m.targets = live
	m.mu.Unlock()

	var first error
	for _, d := range targets {
		if err := d.Execute(params); err != nil && first == nil {
			first = err
		}
	}
	return first
}
