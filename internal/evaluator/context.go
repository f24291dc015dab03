// Package evaluator is the recursive interpreter over a parsed command
// tree: it manages child processes, pipelines, redirections, job control,
// signal dispatch, and exit-status propagation, modeled on the process
// launching and signal-handling idioms of Pebble's
// internals/overlord/servstate and internals/reaper.
package evaluator

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/jobtable"
	"github.com/pboisselier/gosh/internal/logger"
	"github.com/pboisselier/gosh/internal/reaper"
	"github.com/pboisselier/gosh/internal/signals"
	"github.com/pboisselier/gosh/internal/termctl"
	"github.com/pboisselier/gosh/internal/tree"
)

// Status sentinels: negative values in this range are never real exit
// codes (those live in [0,255] or signal-derived codes above that), so
// they can round-trip through the same int without ambiguity.
const (
	// StatusNone means "no status change" (the EMPTY node, or an internal
	// bookkeeping result that must not overwrite $?).
	StatusNone = -1000 - iota
	// StatusBGLaunched means "a background job was launched; it has no
	// exit status yet" and must not overwrite $?.
	StatusBGLaunched
)

func isSentinel(status int) bool {
	return status == StatusNone || status == StatusBGLaunched
}

// Context is the evaluator's process-wide state: shell pid and pgid,
// interactivity, init flag, last exit status, and the job table. Modeled
// on Pebble's ServiceManager as a single context created at program
// start and passed explicitly, rather than package-level globals, to
// keep testing tractable.
type Context struct {
	Stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	jobs *jobtable.Table

	shellPid  int
	shellPgid int

	interactive bool
	initialized bool

	lastStatus int

	dispatcher *signals.Dispatcher

	// termFd is the file descriptor used for terminal-ownership ioctls.
	// Defaults to stdin's fd (0) but is overridable for tests.
	termFd int

	// forceInteractive overrides auto-detection of terminal ownership in
	// init, when set via WithForceInteractive; nil means "detect".
	forceInteractive *bool

	// watchers tracks, per pid, the background watcher goroutine (if any)
	// currently consuming that job's reaper channel, so fg/bg can hand off
	// consumption cleanly instead of spawning a second reader and leaking
	// the first one.
	watchersMu sync.Mutex
	watchers   map[int]*bgWatch
}

// Option configures a new Context.
type Option func(*Context)

// WithOutput overrides stdout/stderr (used by tests to capture output).
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Context) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithTermFd overrides the fd used for terminal-ownership ioctls (used by
// tests, which usually have no controlling terminal at all).
func WithTermFd(fd int) Option {
	return func(c *Context) { c.termFd = fd }
}

// WithMaxJobs overrides the job table's fixed capacity (default 32).
func WithMaxJobs(n int) Option {
	return func(c *Context) { c.jobs = jobtable.New(n) }
}

// WithForceInteractive overrides auto-detection of terminal ownership,
// the evaluator-side home for shellconfig.Config's Interactive field.
func WithForceInteractive(v bool) Option {
	return func(c *Context) { c.forceInteractive = &v }
}

// New creates a Context. Signal handlers, the process group, and terminal
// ownership are established lazily on the first call to Evaluate, not
// here.
func New(opts ...Option) *Context {
	c := &Context{
		Stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		jobs:       jobtable.New(32),
		lastStatus: 0,
		termFd:     unix.Stdin,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.dispatcher = signals.New(signals.Handlers{
		SIGCHLD: c.onSIGCHLD,
		SIGINT:  c.onSIGINT,
		SIGTSTP: c.onSIGTSTP,
		SIGTTIN: c.onSIGTTIN,
		SIGTTOU: c.onSIGTTOU,
	})
	return c
}

// Stdout implements builtin.Shell.
func (c *Context) Stdout() io.Writer { return c.stdout }

// Stderr implements builtin.Shell.
func (c *Context) Stderr() io.Writer { return c.stderr }

// LastStatus implements builtin.Shell.
func (c *Context) LastStatus() int { return c.lastStatus }

// SetLastStatus implements builtin.Shell.
func (c *Context) SetLastStatus(status int) { c.lastStatus = status }

// Interactive implements builtin.Shell.
func (c *Context) Interactive() bool { return c.interactive }

// init establishes process-wide state once: starts the reaper, installs
// signal handlers, puts the shell in its own process group, and attempts
// to grab the terminal. The job table is not touched here; New creates it
// empty.
func (c *Context) init() {
	if c.initialized {
		return
	}

	if err := reaper.Start(); err != nil {
		// Subreaper status only affects orphaned grandchildren, not direct
		// children; harvesting immediate jobs still works without it, so
		// this is logged rather than treated as a fatal init failure.
		logger.Noticef("Cannot enable child subreaping: %v", err)
	}

	c.dispatcher.Install(true)

	if err := unix.Setpgid(0, 0); err != nil {
		logger.Noticef("Cannot set shell process group: %v", err)
	}
	pgid, err := unix.Getpgid(0)
	if err != nil {
		logger.Panicf("cannot establish shell process group: %v", err)
	}
	c.shellPgid = pgid
	c.shellPid = os.Getpid()

	if c.forceInteractive != nil {
		c.interactive = *c.forceInteractive
	} else if termctl.IsInteractive(c.termFd) {
		if err := termctl.SetForeground(c.termFd, c.shellPgid); err != nil {
			logger.Debugf("Cannot grab controlling terminal, demoting to non-interactive: %v", err)
			c.interactive = false
		} else {
			c.interactive = true
		}
	} else {
		c.interactive = false
	}

	c.initialized = true
}

// Evaluate is the evaluator's single entry point: it dispatches by node
// kind, inspects the foreground job's final state while it is still in
// the table, reports, clears it, and finally reaps/announces any
// background jobs that finished earlier. Order matters here: inspecting
// the foreground job has to happen before any clearing pass touches the
// table, or its Done slot is gone before it can be read.
func (c *Context) Evaluate(n *tree.Node) int {
	c.init()

	status := c.eval(n, evalOptions{})

	normalized := c.normalize(status)

	if fg, ok := c.jobs.Foreground(); ok {
		if fg.State == jobtable.Done {
			if fg.TermSignal != 0 {
				normalized = 128 + fg.TermSignal
			} else if fg.ExitStatus != 0 {
				normalized = fg.ExitStatus
			}

			if c.interactive && fg.TermSignal != 0 {
				switch unix.Signal(fg.TermSignal) {
				case unix.SIGSEGV:
					fmt.Fprintf(c.stderr, "%s: Segmentation fault.\n", fg.Label)
				case unix.SIGKILL, unix.SIGTERM:
					fmt.Fprintf(c.stderr, "%s: Terminated.\n", fg.Label)
				}
			}

			c.jobs.Unregister(fg.JID)
		}
		c.jobs.SetForeground(-1)
	}

	// Only background jobs that finished earlier remain Done here; the
	// foreground job, if any, was already inspected and cleared above.
	c.jobs.ReapDone(c.interactive, c.stdout)

	if !isSentinel(status) {
		c.lastStatus = normalized
	}
	return normalized
}

// normalize maps an internal status (which may be a sentinel or a raw
// wait-status-derived value) to the [0,255]-ish range callers observe as
// $?.
func (c *Context) normalize(status int) int {
	switch status {
	case StatusNone:
		return c.lastStatus
	case StatusBGLaunched:
		return 0
	default:
		if status < 0 {
			return 1
		}
		return status
	}
}

type evalOptions struct {
	Background bool
}
