package evaluator

import (
	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/jobtable"
	"github.com/pboisselier/gosh/internal/logger"
	"github.com/pboisselier/gosh/internal/reaper"
	"github.com/pboisselier/gosh/internal/termctl"
)

// onSIGCHLD acknowledges delivery for metrics/debug purposes. Actual
// harvesting happens per-job: launch registers each child's pid with the
// reaper (internal/reaper.TrackCommand) and that pid's status-change
// channel is consumed (by waitForeground or a watchBackground goroutine),
// updating the job table as changes arrive.
// Go's signal.Notify already demultiplexes SIGCHLD to the reaper's own
// goroutine (see internal/reaper), so this handler has nothing further
// to drive.
func (c *Context) onSIGCHLD() {
	logger.Debugf("SIGCHLD observed.")
}

// onSIGINT forwards the interrupt to the foreground job's process group;
// the shell itself never terminates on SIGINT.
func (c *Context) onSIGINT() {
	fg, ok := c.jobs.Foreground()
	if !ok {
		return
	}
	if err := unix.Kill(-fg.Pgid, unix.SIGINT); err != nil {
		logger.Debugf("Cannot forward SIGINT to pgid %d: %v", fg.Pgid, err)
	}
}

// onSIGTSTP suspends the current foreground job and prepares it to
// continue in the background, by forwarding SIGTSTP to its process group.
// The actual state transition to Stopped is observed by whatever consumes
// the job's reaper channel (waitForeground for a foreground job); this
// handler only forwards the signal.
func (c *Context) onSIGTSTP() {
	fg, ok := c.jobs.Foreground()
	if !ok {
		return
	}
	if err := unix.Kill(-fg.Pgid, unix.SIGTSTP); err != nil {
		logger.Debugf("Cannot forward SIGTSTP to pgid %d: %v", fg.Pgid, err)
	}
}

// onSIGTTIN / onSIGTTOU reclaim the terminal for the shell's own process
// group, fired when the shell itself (backgrounded by its own parent,
// or racing a child for terminal access) is sent one of these signals.
func (c *Context) onSIGTTIN() { c.reclaimTerminal() }
func (c *Context) onSIGTTOU() { c.reclaimTerminal() }

func (c *Context) reclaimTerminal() {
	if !c.interactive {
		return
	}
	if err := termctl.SetForeground(c.termFd, c.shellPgid); err != nil {
		logger.Debugf("Cannot reclaim terminal: %v", err)
	}
}

// giveTerminal grants the terminal's foreground ownership to pgid, used
// before blocking on a foreground job.
func (c *Context) giveTerminal(pgid int) {
	if err := termctl.SetForeground(c.termFd, pgid); err != nil {
		logger.Debugf("Cannot give terminal to pgid %d: %v", pgid, err)
	}
}

// waitForeground blocks until job's leader exits, is killed by a signal,
// or is stopped, updating the job table as the reaper reports each
// transition.
func (c *Context) waitForeground(job jobtable.Job, ch <-chan reaper.Change) jobtable.Job {
	for change := range ch {
		switch change.State {
		case reaper.Exited:
			c.jobs.SetState(job.Pid, jobtable.Done, change.ExitStatus, 0)
			reaper.Untrack(job.Pid)
			j, _ := c.jobs.Find(job.Pid)
			return j
		case reaper.Signaled:
			c.jobs.SetState(job.Pid, jobtable.Done, 0, change.Signal)
			reaper.Untrack(job.Pid)
			j, _ := c.jobs.Find(job.Pid)
			return j
		case reaper.Stopped:
			c.jobs.SetState(job.Pid, jobtable.Stopped, 0, change.Signal)
			j, _ := c.jobs.Find(job.Pid)
			return j
		case reaper.Continued:
			c.jobs.SetState(job.Pid, jobtable.Running, 0, 0)
			// keep waiting; continuing doesn't end the foreground wait
		}
	}
	j, _ := c.jobs.Find(job.Pid)
	return j
}

// watchBackground runs in its own goroutine for a backgrounded job,
// updating the job table as the reaper reports transitions, until the
// job is Done or w.stop is closed by fg taking over. This is the
// asynchronous counterpart of waitForeground; w.stop lets the two hand
// off consumption of ch without both ever reading it at once.
func (c *Context) watchBackground(pid int, ch <-chan reaper.Change, w *bgWatch) {
	defer func() {
		c.watchersMu.Lock()
		if c.watchers[pid] == w {
			delete(c.watchers, pid)
		}
		c.watchersMu.Unlock()
		close(w.stopped)
	}()

	for {
		select {
		case change, ok := <-ch:
			if !ok {
				return
			}
			switch change.State {
			case reaper.Exited:
				c.jobs.SetState(pid, jobtable.Done, change.ExitStatus, 0)
				reaper.Untrack(pid)
				return
			case reaper.Signaled:
				c.jobs.SetState(pid, jobtable.Done, 0, change.Signal)
				reaper.Untrack(pid)
				return
			case reaper.Stopped:
				c.jobs.SetState(pid, jobtable.Stopped, 0, change.Signal)
			case reaper.Continued:
				c.jobs.SetState(pid, jobtable.Running, 0, 0)
			}
		case <-w.stop:
			return
		}
	}
}
