package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/term"

	"github.com/feather-lang/bluelua"
	"github.com/feather-lang/bluelua/host"
)

const (
	prompt         = "> "
	continuePrompt = ">> "
)

// replTerminal is a line-editing terminal for the interactive mode.
type replTerminal struct {
	*term.Terminal

	fd       int
	oldState *term.State
	stop     func()
	input    string // accumulated multi-line chunk
}

// newReplTerminal puts in into raw mode when it is a terminal.
func newReplTerminal(in io.Reader, out io.Writer) (*replTerminal, error) {
	r := &replTerminal{fd: -1, stop: func() {}}
	r.Terminal = term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)

	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return r, nil
	}

	r.fd = int(f.Fd())
	oldState, err := term.MakeRaw(r.fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}
	r.oldState = oldState
	r.resize()

	sigwinch, stop := setupResizeSignal()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigwinch:
				r.resize()
			case <-done:
				return
			}
		}
	}()
	r.stop = func() {
		stop()
		close(done)
	}
	return r, nil
}

func (r *replTerminal) resize() {
	width, height, err := term.GetSize(r.fd)
	if err != nil || width <= 0 {
		return
	}
	r.SetSize(width, height)
}

// Close restores the terminal.
func (r *replTerminal) Close() {
	r.stop()
	if r.oldState != nil {
		term.Restore(r.fd, r.oldState)
		r.oldState = nil
	}
}

// Run reads and evaluates chunks until end of input.
func (r *replTerminal) Run(s *bluelua.State) error {
	r.AutoCompleteCallback = completer(s.LState())

	for {
		line, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if r.input != "" {
			r.input += "\n" + line
		} else {
			r.input = line
		}
		if strings.TrimSpace(r.input) == "" {
			r.input = ""
			continue
		}

		if r.eval(s.LState()) {
			r.input = ""
			r.SetPrompt(prompt)
		} else {
			r.SetPrompt(continuePrompt)
		}
	}
}

// eval runs the accumulated chunk. It returns false when the chunk is
// incomplete and more input is needed.
func (r *replTerminal) eval(L *lua.LState) bool {
	fn, err := L.LoadString("return " + r.input)
	if err != nil {
		fn, err = L.LoadString(r.input)
	}
	if err != nil {
		if isIncomplete(err) {
			return false
		}
		fmt.Fprintf(r, "error: %v\n", err)
		return true
	}

	guard := bluelua.NewStackGuard(L)
	defer guard.Restore()

	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		fmt.Fprintf(r, "error: %v\n", err)
		return true
	}

	var results []string
	for i := guard.Top() + 1; i <= L.GetTop(); i++ {
		results = append(results, L.ToStringMeta(L.Get(i)).String())
	}
	if len(results) > 0 {
		fmt.Fprintln(r, strings.Join(results, "\t"))
	}
	return true
}

func isIncomplete(err error) bool {
	return strings.Contains(err.Error(), "EOF")
}

// completer completes global names, and host functions and delegates after
// "object." or "object:".
func completer(L *lua.LState) func(line string, pos int, key rune) (string, int, bool) {
	return func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}

		start := pos
		for start > 0 && isWordByte(line[start-1]) {
			start--
		}
		word := line[start:pos]

		var candidates []string
		partial := word
		if i := strings.LastIndexAny(word, ".:"); i >= 0 {
			partial = word[i+1:]
			candidates = memberNames(L, word[:i])
		} else {
			candidates = globalNames(L)
		}

		completion := commonPrefix(withPrefix(candidates, partial))
		if len(completion) <= len(partial) {
			return "", 0, false
		}
		newLine := line[:pos-len(partial)] + completion + line[pos:]
		return newLine, pos - len(partial) + len(completion), true
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b == '.' || b == ':' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func globalNames(L *lua.LState) []string {
	var names []string
	L.G.Global.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			names = append(names, string(s))
		}
	})
	return names
}

func memberNames(L *lua.LState, global string) []string {
	ud, ok := L.GetGlobal(global).(*lua.LUserData)
	if !ok {
		return nil
	}
	obj, ok := ud.Value.(host.Object)
	if !ok || !obj.IsValid() {
		return nil
	}
	names := append(obj.Class().FunctionNames(), obj.Class().MulticastNames()...)
	return append(names, "Name")
}

func withPrefix(names []string, prefix string) []string {
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out
}

func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
