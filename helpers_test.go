package bluelua_test

import (
	"bytes"
	"log/slog"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/bluelua"
	"github.com/feather-lang/bluelua/host"
)

// Pawn is the host object type used throughout these tests.
type Pawn struct {
	host.Base
}

var (
	onPing = &host.Function{
		Name: "OnPingSignature",
		Params: []host.Property{
			{Name: "Count", Kind: host.KindInt},
			{Name: "Label", Kind: host.KindString},
		},
	}

	onPong = &host.Function{
		Name:   "OnPongSignature",
		Params: []host.Property{{Name: "Score", Kind: host.KindFloat}},
	}

	pawnClass = host.NewClass("Pawn", host.ObjectClass,
		&host.Function{
			Name: "Add",
			Params: []host.Property{
				{Name: "A", Kind: host.KindInt},
				{Name: "B", Kind: host.KindInt},
				{Name: "ReturnValue", Kind: host.KindInt, Return: true},
			},
			Native: func(self host.Object, params host.Params) error {
				params[2] = params[0].(int64) + params[1].(int64)
				return nil
			},
		},
		&host.Function{Name: "Abstract"},
	).AddMulticast("OnPing", onPing).AddMulticast("OnPong", onPong)
)

type env struct {
	s    *bluelua.State
	w    *host.World
	out  *bytes.Buffer
	logs *bytes.Buffer
}

// newEnv creates a world and a State; config may be tweaked by fns.
func newEnv(t *testing.T, fns ...func(*bluelua.Config)) *env {
	t.Helper()
	e := &env{out: &bytes.Buffer{}, logs: &bytes.Buffer{}}
	logger := slog.New(slog.NewTextHandler(e.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e.w = host.NewWorld(logger)

	config := bluelua.Config{Stdout: e.out}
	for _, fn := range fns {
		fn(&config)
	}
	e.s = bluelua.New(e.w, config)
	t.Cleanup(func() {
		e.w.Close()
		e.s.Close()
	})
	return e
}

func (e *env) pawn(name string) *Pawn {
	return host.NewObject[Pawn](e.w, nil, pawnClass, name)
}

func (e *env) run(t *testing.T, source string) {
	t.Helper()
	if err := e.s.DoString(source); err != nil {
		t.Fatalf("DoString failed: %v", err)
	}
}

func (e *env) global(name string) lua.LValue {
	return e.s.L.GetGlobal(name)
}

// recorded returns the arguments stored by the Lua helper `record`.
func (e *env) recorded(t *testing.T) []lua.LValue {
	t.Helper()
	tbl, ok := e.global("args").(*lua.LTable)
	if !ok {
		t.Fatalf("expected args table, got %s", e.global("args").Type())
	}
	n := int(lua.LVAsNumber(e.global("nargs")))
	out := make([]lua.LValue, n)
	for i := range out {
		out[i] = tbl.RawGetInt(i + 1)
	}
	return out
}

const recordSource = `
calls = 0
function record(...)
	calls = calls + 1
	args = {...}
	nargs = select('#', ...)
end
`

func invokeFunction() *host.Function {
	return bluelua.FunctionDelegateClass.FindFunction(bluelua.DelegateFunctionName)
}
