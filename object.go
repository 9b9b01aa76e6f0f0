package bluelua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/bluelua/host"
)

const (
	objectMetatableName   = "bluelua.Object"
	delegateMetatableName = "bluelua.Delegate"
)

// delegateHandle is the script-side view of a multicast delegate property.
type delegateHandle struct {
	owner host.Object
	name  string
	md    *host.MulticastDelegate
}

func (s *State) registerObjectMetatables() {
	L := s.L

	mt := L.NewTypeMetatable(objectMetatableName)
	L.SetField(mt, "__index", L.NewFunction(s.objectIndex))
	L.SetField(mt, "__tostring", L.NewFunction(objectToString))

	dmt := L.NewTypeMetatable(delegateMetatableName)
	L.SetField(dmt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"Add":       s.delegateAdd,
		"Remove":    delegateRemove,
		"Clear":     delegateClear,
		"Broadcast": delegateBroadcast,
		"IsBound":   delegateIsBound,
	}))
	L.SetField(dmt, "__tostring", L.NewFunction(delegateToString))
}

// PushObject pushes obj onto the main stack. Nil and destroyed objects push nil.
// A given object is always pushed as the same userdata.
func (s *State) PushObject(obj host.Object) {
	s.pushObject(s.L, obj)
}

func (s *State) pushObject(L *lua.LState, obj host.Object) {
	if obj == nil || !obj.IsValid() || s.closed {
		L.Push(lua.LNil)
		return
	}
	if ud, ok := s.objects[obj]; ok {
		L.Push(ud)
		return
	}
	ud := L.NewUserData()
	ud.Value = obj
	L.SetMetatable(ud, L.GetTypeMetatable(objectMetatableName))
	s.objects[obj] = ud
	L.Push(ud)
}

// FetchObject returns the live host object at stack index idx of L, or nil.
func FetchObject(L *lua.LState, idx int) host.Object {
	return objectOf(L.Get(idx))
}

// objectOf returns the live host object wrapped by lv, or nil.
func objectOf(lv lua.LValue) host.Object {
	ud, ok := lv.(*lua.LUserData)
	if !ok {
		return nil
	}
	obj, ok := ud.Value.(host.Object)
	if !ok || !obj.IsValid() {
		return nil
	}
	return obj
}

// forgetObject drops the cached userdata of a destroyed object.
func (s *State) forgetObject(obj host.Object) {
	delete(s.objects, obj)
}

// objectIndex resolves obj.key: a host function, a multicast delegate, or Name.
func (s *State) objectIndex(L *lua.LState) int {
	obj := FetchObject(L, 1)
	key := L.CheckString(2)
	if obj == nil {
		L.RaiseError("attempt to index a destroyed host object (field '%s')", key)
		return 0
	}

	if fn := obj.Class().FindFunction(key); fn != nil {
		L.Push(L.NewFunction(func(L *lua.LState) int {
			return s.callHostFunction(L, fn)
		}))
		return 1
	}

	if md := obj.Multicast(key); md != nil {
		ud := L.NewUserData()
		ud.Value = &delegateHandle{owner: obj, name: key, md: md}
		L.SetMetatable(ud, L.GetTypeMetatable(delegateMetatableName))
		L.Push(ud)
		return 1
	}

	if key == "Name" {
		L.Push(lua.LString(obj.Name()))
		return 1
	}

	L.Push(lua.LNil)
	return 1
}

// callHostFunction implements obj:Function(args...) for a host function.
func (s *State) callHostFunction(L *lua.LState, fn *host.Function) int {
	target := FetchObject(L, 1)
	if target == nil {
		L.ArgError(1, "host object expected (use ':' to call host functions)")
		return 0
	}

	params, err := ToParams(L, fn, 2)
	if err != nil {
		if argErr, ok := err.(*ArgError); ok {
			L.ArgError(argErr.Index, fmt.Sprintf("%s: %s", argErr.Param, argErr.Msg))
			return 0
		}
		L.RaiseError("%s", err.Error())
		return 0
	}

	if err := target.ProcessEvent(fn, params); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	return s.pushReturns(L, fn, params)
}

func objectToString(L *lua.LState) int {
	ud := L.CheckUserData(1)
	obj, _ := ud.Value.(host.Object)
	if obj == nil || !obj.IsValid() {
		L.Push(lua.LString("<destroyed host object>"))
		return 1
	}
	L.Push(lua.LString(fmt.Sprintf("%s: %s", obj.Class().Name, obj.Name())))
	return 1
}

func checkDelegate(L *lua.LState) *delegateHandle {
	ud := L.CheckUserData(1)
	h, ok := ud.Value.(*delegateHandle)
	if !ok {
		L.ArgError(1, "delegate expected")
		return nil
	}
	return h
}

// delegateAdd implements d:Add(fd), d:Add(fn) and d:Add(self, fn).
//
// A plain function is wrapped in a new FunctionDelegate owned by the object
// holding the delegate and bound to the delegate's signature. An existing
// FunctionDelegate without a signature adopts the delegate's; one bound to a
// different signature is rejected. The FunctionDelegate is returned so it can
// be removed later.
func (s *State) delegateAdd(L *lua.LState) int {
	h := checkDelegate(L)

	if fd, ok := FetchObject(L, 2).(*FunctionDelegate); ok {
		if sig := fd.Signature(); sig != nil && sig != h.md.Signature {
			L.RaiseError("%s.%s: %s is bound to %s, not %s",
				h.owner.Name(), h.name, fd.Name(), sig.GetName(), h.md.Signature.GetName())
			return 0
		}
		fd.BindSignature(h.md.Signature)
		h.md.Add(fd, DelegateFunctionName)
		s.pushObject(L, fd)
		return 1
	}

	callable, ok := positionalCallable(L, 2)
	if !ok {
		L.ArgError(2, "function or LuaFunctionDelegate expected")
		return 0
	}
	fd, err := NewFunctionDelegate(h.owner, s, h.md.Signature, callable)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	h.md.Add(fd, DelegateFunctionName)
	s.pushObject(L, fd)
	return 1
}

func delegateRemove(L *lua.LState) int {
	h := checkDelegate(L)
	fd := Fetch(L, 2)
	h.md.Remove(fd, DelegateFunctionName)
	return 0
}

func delegateClear(L *lua.LState) int {
	h := checkDelegate(L)
	h.md.Clear()
	return 0
}

func delegateBroadcast(L *lua.LState) int {
	h := checkDelegate(L)
	params, err := ToParams(L, h.md.Signature, 2)
	if err != nil {
		L.RaiseError("%s.%s: %s", h.owner.Name(), h.name, err.Error())
		return 0
	}
	if err := h.md.Broadcast(params); err != nil {
		L.RaiseError("%s.%s: %s", h.owner.Name(), h.name, err.Error())
	}
	return 0
}

func delegateIsBound(L *lua.LState) int {
	h := checkDelegate(L)
	L.Push(lua.LBool(h.md.IsBound()))
	return 1
}

func delegateToString(L *lua.LState) int {
	h := checkDelegate(L)
	L.Push(lua.LString(fmt.Sprintf("delegate %s.%s (%d bound)", h.owner.Name(), h.name, h.md.Len())))
	return 1
}
