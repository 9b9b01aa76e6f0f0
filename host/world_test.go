package host_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/feather-lang/bluelua/host"
)

// Lamp is a minimal host object used across the host tests.
type Lamp struct {
	host.Base
	on        bool
	destroyed *[]string
}

func (l *Lamp) BeginDestroy() {
	if l.destroyed != nil {
		*l.destroyed = append(*l.destroyed, l.Name())
	}
	l.Base.BeginDestroy()
}

var (
	toggleFunc = &host.Function{
		Name: "Toggle",
		Params: []host.Property{
			{Name: "On", Kind: host.KindBool},
			{Name: "Previous", Kind: host.KindBool, Return: true},
		},
		Native: func(self host.Object, params host.Params) error {
			lamp := self.(*Lamp)
			params[1] = lamp.on
			lamp.on = params[0].(bool)
			return nil
		},
	}
	signatureOnly = &host.Function{Name: "Signature"}
	lampClass     = host.NewClass("Lamp", host.ObjectClass, toggleFunc, signatureOnly)
)

func TestNewObject_GeneratesNames(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	a := host.NewObject[Lamp](w, nil, lampClass, "")
	b := host.NewObject[Lamp](w, nil, lampClass, "")
	c := host.NewObject[Lamp](w, nil, lampClass, "Desk")
	d := host.NewObject[Lamp](w, nil, lampClass, "Desk")

	got := []string{a.Name(), b.Name(), c.Name(), d.Name()}
	want := []string{"Lamp_0", "Lamp_1", "Desk", "Desk_0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if w.Find("Desk") != c {
		t.Errorf("expected Find(Desk) to return the first Desk")
	}
	if a.ID() == b.ID() {
		t.Errorf("expected distinct ids, got %v twice", a.ID())
	}
	if !a.IsValid() {
		t.Errorf("expected new object to be valid")
	}
}

func TestProcessEvent_DefaultCallsNative(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	lamp := host.NewObject[Lamp](w, nil, lampClass, "")
	params := toggleFunc.NewParams()
	params[0] = true
	if err := lamp.ProcessEvent(toggleFunc, params); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}
	if !lamp.on {
		t.Errorf("expected lamp to be on")
	}
	if params[1] != false {
		t.Errorf("expected previous state false, got %v", params[1])
	}
}

func TestProcessEvent_Errors(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	lamp := host.NewObject[Lamp](w, nil, lampClass, "")

	if err := lamp.ProcessEvent(signatureOnly, nil); !errors.Is(err, host.ErrNoNative) {
		t.Errorf("expected ErrNoNative, got %v", err)
	}
	if err := lamp.ProcessEvent(toggleFunc, host.Params{true}); !errors.Is(err, host.ErrParamCount) {
		t.Errorf("expected ErrParamCount, got %v", err)
	}

	w.Destroy(lamp)
	if err := lamp.ProcessEvent(toggleFunc, toggleFunc.NewParams()); !errors.Is(err, host.ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

func TestDestroy_InnersFirst(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	var order []string
	var notified []string
	remove := w.OnDestroy(func(obj host.Object) {
		notified = append(notified, obj.Name())
	})
	defer remove()

	room := host.NewObject[Lamp](w, nil, lampClass, "Room")
	room.destroyed = &order
	first := host.NewObject[Lamp](w, room, lampClass, "First")
	first.destroyed = &order
	second := host.NewObject[Lamp](w, room, lampClass, "Second")
	second.destroyed = &order
	bulb := host.NewObject[Lamp](w, first, lampClass, "Bulb")
	bulb.destroyed = &order

	w.Destroy(room)

	want := []string{"Second", "Bulb", "First", "Room"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, notified); diff != "" {
		t.Errorf("listener order mismatch (-want +got):\n%s", diff)
	}
	if w.Len() != 0 {
		t.Errorf("expected empty world, got %d objects", w.Len())
	}
	if w.Find("Room") != nil {
		t.Errorf("expected destroyed object to be unreachable by name")
	}

	// Destroying again is a no-op.
	w.Destroy(room)
	if len(order) != 4 {
		t.Errorf("expected no second BeginDestroy, got %v", order)
	}
}

func TestWorldClose(t *testing.T) {
	w := host.NewWorld(nil)

	var order []string
	a := host.NewObject[Lamp](w, nil, lampClass, "A")
	a.destroyed = &order
	b := host.NewObject[Lamp](w, a, lampClass, "B")
	b.destroyed = &order

	w.Close()

	if a.IsValid() || b.IsValid() {
		t.Errorf("expected all objects invalid after Close")
	}
	if diff := cmp.Diff([]string{"B", "A"}, order); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
}

func TestClass_Lookup(t *testing.T) {
	sig := &host.Function{Name: "OnSomething"}
	base := host.NewClass("Base", host.ObjectClass, toggleFunc).AddMulticast("OnSomething", sig)
	derived := host.NewClass("Derived", base)

	if derived.FindFunction("Toggle") != toggleFunc {
		t.Errorf("expected Toggle to be found through super class")
	}
	if derived.FindFunction("Missing") != nil {
		t.Errorf("expected nil for missing function")
	}
	if got, ok := derived.FindMulticast("OnSomething"); !ok || got != sig {
		t.Errorf("expected OnSomething signature, got %v, %v", got, ok)
	}
	if !derived.IsChildOf(host.ObjectClass) || !derived.IsChildOf(base) {
		t.Errorf("expected Derived to be a child of Base and Object")
	}
	if base.IsChildOf(derived) {
		t.Errorf("expected Base not to be a child of Derived")
	}

	derived.AddFunction(&host.Function{Name: "Extra"})
	if diff := cmp.Diff([]string{"Extra", "Toggle"}, derived.FunctionNames()); diff != "" {
		t.Errorf("function names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"OnSomething"}, derived.MulticastNames()); diff != "" {
		t.Errorf("multicast names mismatch (-want +got):\n%s", diff)
	}
}
