// Package termctl wraps the terminal-ownership and raw-mode primitives the
// evaluator needs for job control: granting/reclaiming the controlling
// terminal's foreground process group, and saving/restoring termios state.
// Grounded on Pebble's internal/ptyutil, which wraps the same
// golang.org/x/sys/unix ioctls and github.com/pkg/term/termios calls.
package termctl

import (
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// IsInteractive reports whether fd is a terminal the shell can take
// ownership of. It layers golang.org/x/term's portable check with a raw
// TIOCGPGRP probe, the same double-check internal/ptyutil effectively
// performs between IsTerminal and GetState.
func IsInteractive(fd int) bool {
	if !term.IsTerminal(fd) {
		return false
	}
	_, err := CurrentForeground(fd)
	return err == nil
}

// CurrentForeground returns the pgid currently owning the terminal at fd.
func CurrentForeground(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCGPGRP)
}

// SetForeground makes pgid the terminal's foreground process group.
func SetForeground(fd int, pgid int) error {
	return unix.IoctlSetInt(fd, unix.TIOCSPGRP, pgid)
}

// State is a saved terminal mode, for MakeRaw/Restore.
type State struct {
	termios unix.Termios
}

// GetState captures the current termios state of fd.
func GetState(fd int) (*State, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}
	return &State{termios: *t}, nil
}

// MakeRaw puts fd into raw mode and returns the previous state so it can
// be restored with Restore.
func MakeRaw(fd int) (*State, error) {
	old, err := GetState(fd)
	if err != nil {
		return nil, err
	}
	raw := old.termios
	termios.Cfmakeraw(&raw)
	if err := termios.Tcsetattr(uintptr(fd), termios.TCSANOW, &raw); err != nil {
		return nil, err
	}
	return old, nil
}

// Restore restores fd to a previously saved state.
func Restore(fd int, state *State) error {
	return termios.Tcsetattr(uintptr(fd), termios.TCSANOW, &state.termios)
}
