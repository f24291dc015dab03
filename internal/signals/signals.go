// Package signals installs and routes the shell's asynchronous signal
// handling, grounded on the signal.Notify channel pattern
// internals/cli/cmd_exec.go uses to forward signals to an exec'd process.
//
// Go's signal.Notify is itself the "self-pipe" pattern used as the clean
// fix for async-signal-unsafe handlers: the runtime delivers signals onto
// a channel serviced by an ordinary goroutine, so routing logic here runs
// with the full Go runtime available rather than inside a restricted
// signal handler.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/metrics"
)

// Handlers is the set of callbacks the dispatcher invokes for each routed
// signal, provided by the evaluator's top-level Context.
type Handlers struct {
	SIGCHLD func()
	SIGINT  func()
	SIGTSTP func()
	SIGTTIN func()
	SIGTTOU func()
}

// Dispatcher installs the shell's custom signal routing and can swap back
// to OS-default dispositions, mirroring an install(custom)/install(default)
// pair used around giving the terminal to a foreground child and
// reclaiming it.
type Dispatcher struct {
	handlers Handlers

	mu      sync.Mutex
	ch      chan os.Signal
	stop    chan struct{}
	running bool
}

var watched = []os.Signal{unix.SIGCHLD, unix.SIGINT, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU}

// New creates a Dispatcher that will route the five shell-relevant signals
// to the given handlers once Install(true) is called.
func New(h Handlers) *Dispatcher {
	return &Dispatcher{handlers: h}
}

// Install(true) installs the shell's custom routing. Install(false) stops
// routing (signal.Stop on the routing channel), so each watched signal that
// no other channel is notified of reverts to its default disposition.
func (d *Dispatcher) Install(custom bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if custom {
		if d.running {
			return
		}
		d.ch = make(chan os.Signal, 16)
		d.stop = make(chan struct{})
		signal.Notify(d.ch, watched...)
		d.running = true
		go d.loop(d.ch, d.stop)
		return
	}

	if !d.running {
		return
	}
	signal.Stop(d.ch)
	close(d.stop)
	d.running = false
}

func (d *Dispatcher) loop(ch chan os.Signal, stop chan struct{}) {
	for {
		select {
		case sig := <-ch:
			d.route(sig)
		case <-stop:
			return
		}
	}
}

func (d *Dispatcher) route(sig os.Signal) {
	sc, ok := sig.(syscall.Signal)
	if !ok {
		return
	}
	s := unix.Signal(sc)
	metrics.SignalHandled(unix.SignalName(s))

	switch s {
	case unix.SIGCHLD:
		if d.handlers.SIGCHLD != nil {
			d.handlers.SIGCHLD()
		}
	case unix.SIGINT:
		if d.handlers.SIGINT != nil {
			d.handlers.SIGINT()
		}
	case unix.SIGTSTP:
		if d.handlers.SIGTSTP != nil {
			d.handlers.SIGTSTP()
		}
	case unix.SIGTTIN:
		if d.handlers.SIGTTIN != nil {
			d.handlers.SIGTTIN()
		}
	case unix.SIGTTOU:
		if d.handlers.SIGTTOU != nil {
			d.handlers.SIGTTOU()
		}
	}
}
