package scene

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/feather-lang/bluelua/host"
)

// Scene is the contents of a scene file.
type Scene struct {
	Objects []ObjectSpec `yaml:"objects"`
	Events  []Event      `yaml:"events"`
}

// ObjectSpec describes an object to spawn.
type ObjectSpec struct {
	Name   string  `yaml:"name"`
	Class  string  `yaml:"class"`
	Health float64 `yaml:"health"`
}

// Event is a host function call on a named object. Object arguments are
// given by name.
type Event struct {
	Target string `yaml:"target"`
	Call   string `yaml:"call"`
	Args   []any  `yaml:"args"`
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a scene.
func Parse(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	return &sc, nil
}

// Spawn creates the scene's objects in w, in file order.
func (sc *Scene) Spawn(w *host.World) ([]host.Object, error) {
	objs := make([]host.Object, 0, len(sc.Objects))
	for _, spec := range sc.Objects {
		switch spec.Class {
		case "Actor", "":
			objs = append(objs, NewActor(w, nil, spec.Name, spec.Health))
		default:
			return objs, fmt.Errorf("object %q: unknown class %q", spec.Name, spec.Class)
		}
	}
	return objs, nil
}

// Play runs the scene's events in order and stops at the first failure.
func (sc *Scene) Play(w *host.World) error {
	for i, ev := range sc.Events {
		if err := playEvent(w, ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

func playEvent(w *host.World, ev Event) error {
	target := w.Find(ev.Target)
	if target == nil {
		return fmt.Errorf("unknown object %q", ev.Target)
	}
	fn := target.Class().FindFunction(ev.Call)
	if fn == nil {
		return fmt.Errorf("%s has no function %q", target.Name(), ev.Call)
	}
	params, err := host.BuildParams(fn, ev.Args, w.Find)
	if err != nil {
		return err
	}

	w.Logger().Info("scene event", slog.String("target", target.Name()), slog.String("call", fn.Name))
	return target.ProcessEvent(fn, params)
}
