package bluelua

import (
	"errors"
	"fmt"
	"log/slog"
	"weak"

	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/bluelua/host"
)

// DelegateFunctionName is the one event a FunctionDelegate answers with its
// Lua function. Host delegates bind a FunctionDelegate under this name.
const DelegateFunctionName = "LuaDelegateInvoke"

// FunctionDelegateClass is the host class of every FunctionDelegate.
var FunctionDelegateClass = host.NewClass("LuaFunctionDelegate", host.ObjectClass,
	&host.Function{Name: DelegateFunctionName},
	&host.Function{
		Name:   "IsBound",
		Params: []host.Property{{Name: "ReturnValue", Kind: host.KindBool, Return: true}},
		Native: func(self host.Object, params host.Params) error {
			params[0] = self.(*FunctionDelegate).IsBound()
			return nil
		},
	},
	&host.Function{
		Name: "Clear",
		Native: func(self host.Object, params host.Params) error {
			self.(*FunctionDelegate).Clear()
			return nil
		},
	},
	&host.Function{
		Name:   "GetSignatureName",
		Params: []host.Property{{Name: "ReturnValue", Kind: host.KindString, Return: true}},
		Native: func(self host.Object, params host.Params) error {
			params[0] = self.(*FunctionDelegate).SignatureName()
			return nil
		},
	},
)

// Callable is a Lua function together with an optional receiver that is
// passed as the function's first argument on every call.
//
// A non-nil Receiver is always bound. HasReceiver binds Receiver even when it
// is nil, so the function still gets a first argument.
type Callable struct {
	Function    lua.LValue
	Receiver    lua.LValue
	HasReceiver bool
}

func (c Callable) withReceiver() bool {
	return c.HasReceiver || (c.Receiver != nil && c.Receiver != lua.LNil)
}

// FunctionDelegate is a host object wrapping a Lua function, so that host
// delegates can call into scripts.
//
// The Lua function and its receiver are pinned in the registry of the State
// that created them and released by Clear, by rebinding, and when the object
// is destroyed. The delegate holds its State weakly; once the State is closed
// the delegate is inert.
type FunctionDelegate struct {
	host.Base

	state     weak.Pointer[State]
	function  Ref
	receiver  Ref
	signature *host.Function

	lastSignatureName string
}

// NewFunctionDelegate creates a FunctionDelegate under owner, bound to
// c.Function with the layout of sig. A nil sig marshals parameters by their
// Go types.
func NewFunctionDelegate(owner host.Object, s *State, sig *host.Function, c Callable) (*FunctionDelegate, error) {
	if owner == nil || !owner.IsValid() {
		return nil, errors.New("bluelua: create delegate: owner must be a live host object")
	}
	if s.IsClosed() {
		return nil, errors.New("bluelua: create delegate: state is closed")
	}
	if c.Function == nil || c.Function.Type() != lua.LTFunction {
		return nil, errors.New("bluelua: create delegate: callable is not a function")
	}

	fd := host.NewObject[FunctionDelegate](owner.World(), owner, FunctionDelegateClass, "")
	fd.BindState(s)
	if err := fd.Rebind(sig, c); err != nil {
		owner.World().Destroy(fd)
		return nil, err
	}
	return fd, nil
}

// BindState records the State that issues the delegate's references.
// References pinned in a previous, still live State are released first.
func (fd *FunctionDelegate) BindState(s *State) {
	if prev := fd.liveState(); prev != nil && prev != s {
		fd.Clear()
	}
	fd.state = weak.Make(s)
}

// liveState returns the bound State, or nil when it is gone or closed.
func (fd *FunctionDelegate) liveState() *State {
	s := fd.state.Value()
	if s == nil || s.closed {
		return nil
	}
	return s
}

// BindFunction clears the delegate and adopts ref as its function, with the
// layout of sig. Ownership of ref passes to the delegate.
func (fd *FunctionDelegate) BindFunction(sig *host.Function, ref Ref) {
	fd.Clear()
	fd.BindSignature(sig)
	fd.function = ref
}

// BindReceiver adopts ref as the function's first argument. A receiver bound
// earlier is released.
func (fd *FunctionDelegate) BindReceiver(ref Ref) {
	if s := fd.liveState(); s != nil && fd.receiver != NoRef {
		s.Unref(fd.receiver)
	}
	fd.receiver = ref
}

// BindSignature changes the layout used to marshal parameters without
// touching the bound function.
func (fd *FunctionDelegate) BindSignature(sig *host.Function) {
	fd.lastSignatureName = sig.GetName()
	fd.signature = sig
}

// Rebind releases the current function and receiver, then pins c. The old
// references are released before the new ones are pinned.
func (fd *FunctionDelegate) Rebind(sig *host.Function, c Callable) error {
	s := fd.liveState()
	if s == nil {
		return errors.New("bluelua: rebind: state is closed")
	}
	if c.Function == nil || c.Function.Type() != lua.LTFunction {
		return errors.New("bluelua: rebind: callable is not a function")
	}

	fd.Clear()
	fd.BindFunction(sig, s.RefValue(c.Function))
	if c.withReceiver() {
		fd.BindReceiver(s.RefValue(c.Receiver))
	}
	return nil
}

// IsBound reports whether the State is alive and a function is bound.
func (fd *FunctionDelegate) IsBound() bool {
	return fd.liveState() != nil && fd.function != NoRef
}

// HasReceiver reports whether a receiver is bound.
func (fd *FunctionDelegate) HasReceiver() bool {
	return fd.receiver != NoRef
}

// Clear releases the function and receiver and drops the signature. The
// signature name is kept for diagnostics. When the State is gone nothing is
// released.
func (fd *FunctionDelegate) Clear() {
	fd.signature = nil

	if s := fd.liveState(); s != nil {
		if fd.function != NoRef {
			s.Unref(fd.function)
		}
		if fd.receiver != NoRef {
			s.Unref(fd.receiver)
		}
	}
	fd.function = NoRef
	fd.receiver = NoRef
}

// Signature returns the bound layout, or nil.
func (fd *FunctionDelegate) Signature() *host.Function {
	return fd.signature
}

// SignatureName returns the name of the last signature bound, even after Clear.
func (fd *FunctionDelegate) SignatureName() string {
	return fd.lastSignatureName
}

// BeginDestroy releases the delegate's references.
func (fd *FunctionDelegate) BeginDestroy() {
	fd.Clear()
	fd.Base.BeginDestroy()
}

// ProcessEvent calls the bound Lua function for DelegateFunctionName and
// hands every other event to the default handler.
//
// Script errors go to the State's error policy and are not returned. An
// unbound delegate logs a warning and does nothing. The Lua stack is left as
// it was found.
func (fd *FunctionDelegate) ProcessEvent(fn *host.Function, params host.Params) error {
	if fn == nil || fn.Name != DelegateFunctionName {
		return fd.Base.ProcessEvent(fn, params)
	}

	s := fd.liveState()
	if s == nil || fd.function == NoRef {
		fd.logger().Warn("call lua delegate failed: lua function is not bound",
			slog.String("signature", fd.lastSignatureName),
			slog.String("delegate", fd.Name()),
			slog.String("owner", fd.ownerName()))
		return nil
	}

	L := s.L
	guard := NewStackGuard(L)
	defer guard.Restore()

	s.PushRef(fd.function)
	if L.Get(-1).Type() != lua.LTFunction {
		fd.logger().Debug("lua delegate reference does not hold a function",
			slog.String("delegate", fd.Name()),
			slog.String("type", L.Get(-1).Type().String()))
		return nil
	}

	withSelf := false
	if fd.receiver != NoRef {
		s.PushRef(fd.receiver)
		withSelf = true
	}

	if err := s.CallFunction(fd.signature, params, withSelf); err != nil {
		s.reportScriptError(fmt.Errorf("%s (owner %s): %w", fd.Name(), fd.ownerName(), err))
	}
	return nil
}

func (fd *FunctionDelegate) logger() *slog.Logger {
	if s := fd.liveState(); s != nil {
		return s.logger
	}
	return fd.World().Logger()
}

func (fd *FunctionDelegate) ownerName() string {
	if owner := fd.Outer(); owner != nil {
		return owner.Name()
	}
	return ""
}

// Fetch returns the FunctionDelegate at stack index idx of L. Any other value
// raises a Lua error.
func Fetch(L *lua.LState, idx int) *FunctionDelegate {
	fd, ok := FetchObject(L, idx).(*FunctionDelegate)
	if !ok {
		L.RaiseError("param %d is not a LuaFunctionDelegate, use CreateFunctionDelegate to create one", idx)
		return nil
	}
	return fd
}

// positionalCallable reads fn or (self, fn) starting at stack index first.
// A function at first has no receiver; a function at first+1 takes the value
// at first as its receiver, nil included.
func positionalCallable(L *lua.LState, first int) (Callable, bool) {
	if fn := L.Get(first); fn.Type() == lua.LTFunction {
		return Callable{Function: fn}, true
	}
	if fn := L.Get(first + 1); fn.Type() == lua.LTFunction {
		return Callable{Function: fn, Receiver: L.Get(first), HasReceiver: true}, true
	}
	return Callable{}, false
}

// CreateFunctionDelegateLua implements the Lua global
//
//	CreateFunctionDelegate(owner, fn)
//	CreateFunctionDelegate(owner, self, fn)
//
// It returns the new delegate, owned by owner, with no signature.
func CreateFunctionDelegateLua(L *lua.LState) int {
	owner := FetchObject(L, 1)
	if owner == nil {
		L.RaiseError("create delegate failed: param 1 must be a host object as owner")
		return 0
	}

	c, ok := positionalCallable(L, 2)
	if !ok {
		L.RaiseError("create delegate failed: param 2 or param 3 must be a function")
		return 0
	}

	s := StateFor(L)
	if s == nil {
		return 0
	}

	fd, err := NewFunctionDelegate(owner, s, nil, c)
	if err != nil {
		s.logger.Debug("create delegate failed", slog.String("error", err.Error()))
		return 0
	}
	s.pushObject(L, fd)
	return 1
}
