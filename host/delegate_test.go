package host_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/feather-lang/bluelua/host"
)

// Listener records every call it receives.
type Listener struct {
	host.Base
	calls *[]string
}

var (
	onRing = &host.Function{
		Name: "OnRingSignature",
		Params: []host.Property{
			{Name: "Count", Kind: host.KindInt},
		},
	}
	listenerClass = host.NewClass("Listener", host.ObjectClass, &host.Function{
		Name:   "Heard",
		Params: onRing.Params,
		Native: func(self host.Object, params host.Params) error {
			l := self.(*Listener)
			*l.calls = append(*l.calls, self.Name())
			return nil
		},
	})
	bellClass = host.NewClass("Bell", host.ObjectClass).AddMulticast("OnRing", onRing)
)

func TestMulticast_Broadcast(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	var calls []string
	bell := host.NewObject[Listener](w, nil, bellClass, "Bell")
	a := host.NewObject[Listener](w, nil, listenerClass, "A")
	a.calls = &calls
	b := host.NewObject[Listener](w, nil, listenerClass, "B")
	b.calls = &calls

	md := bell.Multicast("OnRing")
	if md == nil {
		t.Fatal("expected OnRing multicast delegate")
	}
	if md.Signature != onRing {
		t.Errorf("expected signature %v, got %v", onRing.Name, md.Signature.GetName())
	}
	if md.IsBound() {
		t.Errorf("expected empty delegate to be unbound")
	}

	md.Add(a, "Heard")
	md.Add(b, "Heard")
	md.Add(a, "Heard") // duplicate
	if md.Len() != 2 {
		t.Errorf("expected 2 bindings, got %d", md.Len())
	}

	if err := md.Broadcast(host.Params{int64(1)}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "B"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	// Destroyed targets are skipped and pruned.
	w.Destroy(a)
	calls = nil
	if err := md.Broadcast(host.Params{int64(2)}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}
	if diff := cmp.Diff([]string{"B"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if md.Len() != 1 {
		t.Errorf("expected destroyed binding to be pruned, got %d", md.Len())
	}

	md.Remove(b, "Heard")
	if md.IsBound() {
		t.Errorf("expected delegate to be unbound after Remove")
	}
}

func TestMulticast_RemoveAllAndClear(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	var calls []string
	a := host.NewObject[Listener](w, nil, listenerClass, "A")
	a.calls = &calls

	md := host.NewMulticastDelegate(onRing)
	md.Add(a, "Heard")
	md.Add(a, "Other")
	md.RemoveAll(a)
	if md.Len() != 0 {
		t.Errorf("expected RemoveAll to drop every binding, got %d", md.Len())
	}

	md.Add(a, "Heard")
	md.Clear()
	if md.Len() != 0 {
		t.Errorf("expected Clear to drop every binding, got %d", md.Len())
	}
}

func TestDelegate_Execute(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	var calls []string
	a := host.NewObject[Listener](w, nil, listenerClass, "A")
	a.calls = &calls

	var unbound host.Delegate
	if err := unbound.Execute(nil); err != nil {
		t.Errorf("expected unbound Execute to do nothing, got %v", err)
	}

	d := host.Delegate{Object: a, FunctionName: "Missing"}
	if err := d.Execute(host.Params{int64(0)}); err == nil {
		t.Errorf("expected error for missing function")
	}

	d.FunctionName = "Heard"
	if err := d.Execute(host.Params{int64(0)}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("expected one call, got %v", calls)
	}
}

func TestBuildParams(t *testing.T) {
	w := host.NewWorld(nil)
	defer w.Close()

	target := host.NewObject[Listener](w, nil, listenerClass, "Target")
	fn := &host.Function{
		Name: "Mixed",
		Params: []host.Property{
			{Name: "Flag", Kind: host.KindBool},
			{Name: "Count", Kind: host.KindInt},
			{Name: "Scale", Kind: host.KindFloat},
			{Name: "Label", Kind: host.KindString},
			{Name: "Who", Kind: host.KindObject},
			{Name: "Result", Kind: host.KindInt, Return: true},
		},
	}

	params, err := host.BuildParams(fn, []any{true, 3, 2, "x", "Target"}, w.Find)
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}
	want := host.Params{true, int64(3), float64(2), "x", host.Object(target), nil}
	if diff := cmp.Diff(want, params, cmp.Comparer(func(a, b host.Object) bool { return a == b })); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	if _, err := host.BuildParams(fn, []any{true}, w.Find); err == nil {
		t.Errorf("expected error for wrong argument count")
	}
	if _, err := host.BuildParams(fn, []any{true, 1.5, 2, "x", "Target"}, w.Find); err == nil {
		t.Errorf("expected error for fractional int")
	}
	if _, err := host.BuildParams(fn, []any{true, 1, 2, "x", "Nobody"}, w.Find); err == nil {
		t.Errorf("expected error for unknown object")
	}
}
