// bluelua runs a Lua script against a scene of host objects.
//
// Every scene object is visible to the script as a global of the same name.
// After the script has run, the scene's events are played; they raise host
// delegates and so call back into the functions the script bound.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/feather-lang/bluelua"
	"github.com/feather-lang/bluelua/host"
	"github.com/feather-lang/bluelua/internal/scene"
)

type options struct {
	scenePath   string
	logLevel    *slog.LevelVar
	interactive bool
}

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := options{logLevel: new(slog.LevelVar)}
	opts.logLevel.Set(slog.LevelWarn)

	cmd := &cobra.Command{
		Use:   "bluelua [flags] [script.lua]",
		Short: "Run Lua scripts against host objects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := ""
			if len(args) == 1 {
				script = args[0]
			}
			err := run(opts, script, stdin, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "error: %v\n", err)
			}
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.scenePath, "scene", "", "YAML scene to load before the script runs")
	cmd.Flags().Var(&logLevelVar{levelVar: opts.logLevel}, "log-level", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "invert whether a REPL is started when no script is given")
	return cmd
}

func run(opts options, script string, stdin io.Reader, stdout, stderr io.Writer) error {
	var repl *replTerminal
	if script == "" && stdinIsTerminal(stdin) != opts.interactive {
		t, err := newReplTerminal(stdin, stdout)
		if err != nil {
			return err
		}
		defer t.Close()
		repl = t
		stdout, stderr = t, t
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.logLevel}))
	world := host.NewWorld(logger)
	defer world.Close()

	s := bluelua.New(world, bluelua.Config{Logger: logger, Stdout: stdout})
	defer s.Close()

	var sc *scene.Scene
	if opts.scenePath != "" {
		var err error
		if sc, err = scene.Load(opts.scenePath); err != nil {
			return err
		}
		objs, err := sc.Spawn(world)
		if err != nil {
			return err
		}
		for _, obj := range objs {
			s.SetGlobalObject(obj.Name(), obj)
		}
		logger.Info("scene loaded", slog.String("path", opts.scenePath), slog.Int("objects", len(objs)))
	}

	switch {
	case script != "":
		if err := s.DoFile(script); err != nil {
			return err
		}
	case repl != nil:
		if err := repl.Run(s); err != nil {
			return err
		}
	default:
		source, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		if err := s.DoString(string(source)); err != nil {
			return err
		}
	}

	if sc != nil {
		return sc.Play(world)
	}
	return nil
}

func stdinIsTerminal(stdin io.Reader) bool {
	f, ok := stdin.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
