package evaluator

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/jobtable"
	"github.com/pboisselier/gosh/internal/logger"
	"github.com/pboisselier/gosh/internal/reaper"
)

// Jobs implements builtin.Shell, exposing the job table to the fg/bg/jobs
// builtins without giving them the rest of Context's internals.
func (c *Context) Jobs() *jobtable.Table { return c.jobs }

// Chdir implements builtin.Shell, backing the cd builtin.
func (c *Context) Chdir(dir string) error {
	return os.Chdir(dir)
}

// Getwd implements builtin.Shell.
func (c *Context) Getwd() (string, error) {
	return os.Getwd()
}

// Exit implements builtin.Shell, backing the exit builtin: terminate the
// shell process directly.
func (c *Context) Exit(status int) {
	os.Exit(status)
}

// Foreground implements builtin.Shell, backing fg: resume a
// stopped-or-backgrounded job in the foreground, give it the terminal,
// and block until it next exits or stops.
func (c *Context) Foreground(job jobtable.Job) int {
	c.jobs.SetState(job.Pid, jobtable.Running, 0, 0)
	c.jobs.SetForeground(job.JID)

	if c.interactive {
		c.giveTerminal(job.Pgid)
	}
	if err := unix.Kill(-job.Pgid, unix.SIGCONT); err != nil {
		logger.Debugf("Cannot send SIGCONT to pgid %d: %v", job.Pgid, err)
	}

	// If job was already running in the background, its watcher goroutine
	// is still consuming its reaper channel; stop it and wait for it to
	// actually exit before reading from that channel ourselves, so the two
	// never race over the same deliveries.
	c.stopWatcher(job.Pid)
	ch := reaper.Track(job.Pid)
	final := c.waitForeground(job, ch)
	if c.interactive {
		c.reclaimTerminal()
	}

	if final.State == jobtable.Done {
		if final.TermSignal != 0 {
			return 128 + final.TermSignal
		}
		return final.ExitStatus
	}
	c.jobs.SetForeground(-1)
	return StatusBGLaunched
}

// Background implements builtin.Shell, backing bg: resume a stopped job
// running in the background, without touching the terminal.
func (c *Context) Background(job jobtable.Job) error {
	c.jobs.SetState(job.Pid, jobtable.Running, 0, 0)
	if err := unix.Kill(-job.Pgid, unix.SIGCONT); err != nil {
		return err
	}
	// A job stopped while it was already backgrounded still has its
	// original watcher goroutine running (watchBackground only returns on
	// Done); only a job stopped while in the foreground has none. Reuse
	// the former, spawn one for the latter.
	c.ensureWatcher(job.Pid)
	return nil
}

// bgWatch lets fg hand off consumption of a job's reaper channel from its
// background watcher goroutine without both ever reading the channel at
// the same time.
type bgWatch struct {
	stop    chan struct{}
	stopped chan struct{}
}

// spawnWatcher starts a fresh background watcher for pid, which the
// caller guarantees isn't already watched (true for every job at the
// moment it's first launched or backgrounded).
func (c *Context) spawnWatcher(pid int, ch <-chan reaper.Change) {
	w := &bgWatch{stop: make(chan struct{}), stopped: make(chan struct{})}
	c.watchersMu.Lock()
	if c.watchers == nil {
		c.watchers = make(map[int]*bgWatch)
	}
	c.watchers[pid] = w
	c.watchersMu.Unlock()
	go c.watchBackground(pid, ch, w)
}

// ensureWatcher spawns a background watcher for pid only if one isn't
// already running.
func (c *Context) ensureWatcher(pid int) {
	c.watchersMu.Lock()
	if _, ok := c.watchers[pid]; ok {
		c.watchersMu.Unlock()
		return
	}
	c.watchersMu.Unlock()
	c.spawnWatcher(pid, reaper.Track(pid))
}

// stopWatcher signals pid's background watcher, if any, to stop consuming
// its reaper channel and blocks until it has actually exited, so the
// caller can safely start reading that channel itself.
func (c *Context) stopWatcher(pid int) {
	c.watchersMu.Lock()
	w, ok := c.watchers[pid]
	c.watchersMu.Unlock()
	if !ok {
		return
	}
	close(w.stop)
	<-w.stopped
}
