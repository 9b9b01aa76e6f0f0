//go:build windows

package main

import (
	"os"
)

// setupResizeSignal returns a channel that never fires; the console size is
// read once at startup.
func setupResizeSignal() (chan os.Signal, func()) {
	return make(chan os.Signal, 1), func() {}
}
