package bluelua

import lua "github.com/yuin/gopher-lua"

// StackGuard restores a Lua stack to the depth it had when the guard was
// taken.
//
//	guard := NewStackGuard(L)
//	defer guard.Restore()
type StackGuard struct {
	L   *lua.LState
	top int
}

// NewStackGuard records the current stack depth of L.
func NewStackGuard(L *lua.LState) StackGuard {
	return StackGuard{L: L, top: L.GetTop()}
}

// Top returns the recorded depth.
func (g StackGuard) Top() int {
	return g.top
}

// Restore resets the stack to the recorded depth.
func (g StackGuard) Restore() {
	if g.L.GetTop() != g.top {
		g.L.SetTop(g.top)
	}
}
