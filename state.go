package bluelua

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/feather-lang/bluelua/host"
)

// Config configures a State.
type Config struct {
	// Logger receives diagnostics. Defaults to the world's logger.
	Logger *slog.Logger

	// Stdout is where the script print function writes. Defaults to os.Stdout.
	Stdout io.Writer

	// SkipOpenLibs leaves the Lua standard libraries unopened.
	SkipOpenLibs bool

	// OnScriptError is called when a script callback raised by a host event
	// fails. Defaults to logging the error.
	OnScriptError func(err error)
}

// State is a Lua interpreter bound to a host world.
//
// Create a State with [New] and always call [State.Close] when done. A State
// is not safe for concurrent use; host events that dispatch into scripts must
// be raised on the goroutine that owns the State.
//
//	world := host.NewWorld(nil)
//	s := bluelua.New(world, bluelua.Config{})
//	defer s.Close()
//	err := s.DoString(`print("hello")`)
type State struct {
	L      *lua.LState
	world  *host.World
	logger *slog.Logger
	config Config
	closed bool

	refs     *lua.LTable // registry arena
	liveRefs map[Ref]struct{}
	freeRefs []Ref
	nextRef  Ref
	stats    RegistryStats

	objects       map[host.Object]*lua.LUserData
	removeOnClose func()
}

// states maps a VM (shared by all of its coroutines) to its State.
var (
	statesMu sync.RWMutex
	states   = make(map[*lua.Global]*State)
)

// New creates a State bound to world.
func New(world *host.World, config Config) *State {
	if config.Logger == nil {
		config.Logger = world.Logger()
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: config.SkipOpenLibs})
	s := &State{
		L:        L,
		world:    world,
		logger:   config.Logger,
		config:   config,
		nextRef:  1,
		liveRefs: make(map[Ref]struct{}),
		objects:  make(map[host.Object]*lua.LUserData),
	}

	s.refs = L.NewTable()
	L.G.Registry.RawSetString(refsRegistryKey, s.refs)

	if !config.SkipOpenLibs {
		L.SetGlobal("print", L.NewFunction(s.luaPrint))
	}
	s.registerObjectMetatables()
	L.SetGlobal("CreateFunctionDelegate", L.NewFunction(CreateFunctionDelegateLua))
	L.SetGlobal("FindObject", L.NewFunction(s.luaFindObject))

	s.removeOnClose = world.OnDestroy(s.forgetObject)

	statesMu.Lock()
	states[L.G] = s
	statesMu.Unlock()
	return s
}

// StateFor returns the State that owns L, or nil if L does not belong to a
// live State.
func StateFor(L *lua.LState) *State {
	if L == nil {
		return nil
	}
	statesMu.RLock()
	s := states[L.G]
	statesMu.RUnlock()
	if s == nil || s.closed {
		return nil
	}
	return s
}

// Close releases the interpreter. Binding objects created from this State
// become inert; their references are not released against the closed VM.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true

	statesMu.Lock()
	delete(states, s.L.G)
	statesMu.Unlock()

	if s.removeOnClose != nil {
		s.removeOnClose()
	}
	s.objects = nil
	s.L.Close()
}

// IsClosed reports whether Close has been called.
func (s *State) IsClosed() bool {
	return s == nil || s.closed
}

// LState returns the underlying Lua VM.
func (s *State) LState() *lua.LState {
	return s.L
}

// World returns the host world the State is bound to.
func (s *State) World() *host.World {
	return s.world
}

// Logger returns the State's logger.
func (s *State) Logger() *slog.Logger {
	return s.logger
}

// DoString runs a Lua chunk.
func (s *State) DoString(source string) error {
	if s.closed {
		return fmt.Errorf("bluelua: state is closed")
	}
	if err := s.L.DoString(source); err != nil {
		return fmt.Errorf("bluelua: %w", err)
	}
	return nil
}

// DoFile runs a Lua file.
func (s *State) DoFile(path string) error {
	if s.closed {
		return fmt.Errorf("bluelua: state is closed")
	}
	if err := s.L.DoFile(path); err != nil {
		return fmt.Errorf("bluelua: %s: %w", path, err)
	}
	return nil
}

// SetGlobalObject exposes a host object to scripts as a global variable.
func (s *State) SetGlobalObject(name string, obj host.Object) {
	s.PushObject(obj)
	v := s.L.Get(-1)
	s.L.Pop(1)
	s.L.SetGlobal(name, v)
}

// reportScriptError applies the script error policy.
func (s *State) reportScriptError(err error) {
	if s.config.OnScriptError != nil {
		s.config.OnScriptError(err)
		return
	}
	s.logger.Error("script callback failed", slog.String("error", err.Error()))
}

// luaPrint writes its arguments to Config.Stdout, tab separated.
func (s *State) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	for i := 1; i <= top; i++ {
		if i > 1 {
			io.WriteString(s.config.Stdout, "\t")
		}
		io.WriteString(s.config.Stdout, L.ToStringMeta(L.Get(i)).String())
	}
	io.WriteString(s.config.Stdout, "\n")
	return 0
}

// luaFindObject implements FindObject(name).
func (s *State) luaFindObject(L *lua.LState) int {
	name := L.CheckString(1)
	s.pushObject(L, s.world.Find(name))
	return 1
}
