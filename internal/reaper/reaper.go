// Package reaper performs the non-blocking harvest of child status changes
// for the evaluator, adapted from Pebble's internals/reaper. Unlike
// Pebble's reaper (which only needs to observe clean exits for its service
// supervisor), this reaper also reports STOPPED and CONTINUED transitions,
// since job control (fg/bg, SIGTSTP) needs to see them.
package reaper

import (
	"os"
	"os/exec"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
	"gopkg.in/tomb.v2"

	"github.com/pboisselier/gosh/internal/logger"
	"github.com/pboisselier/gosh/internal/metrics"
)

// ChangeState is the kind of status change the reaper observed.
type ChangeState int

const (
	// Exited means the process exited normally.
	Exited ChangeState = iota
	// Signaled means the process was killed by a signal.
	Signaled
	// Stopped means the process was suspended (SIGTSTP/SIGSTOP/SIGTTIN/SIGTTOU).
	Stopped
	// Continued means a previously-stopped process resumed (SIGCONT).
	Continued
)

// Change describes one waitpid-observed transition for a tracked pid.
type Change struct {
	Pid        int
	State      ChangeState
	ExitStatus int // valid when State == Exited
	Signal     int // valid when State == Signaled or State == Stopped
}

var (
	reaperTomb tomb.Tomb

	mutex   sync.Mutex
	waiters = make(map[int]chan Change)
	started bool
)

// Start starts the child-process reaper. It sets the current process as a
// child subreaper so that grandchildren orphaned by a dying job are
// reparented to the shell rather than to PID 1, and launches the
// background SIGCHLD-driven harvest goroutine.
func Start() error {
	mutex.Lock()
	defer mutex.Unlock()

	if started {
		return nil
	}

	// Subreaper status only affects orphaned grandchildren (it lets the
	// shell, rather than init, reap a job's own forked descendants); the
	// shell's direct children are reaped via SIGCHLD either way, so a
	// platform without subreaper support degrades gracefully rather than
	// blocking startup.
	isSubreaper, err := setChildSubreaper()
	if err != nil {
		logger.Noticef("Cannot set child subreaper: %v", err)
	} else if !isSubreaper {
		logger.Debugf("Child subreaping unavailable on this platform.")
	}

	started = true
	reaperTomb.Go(reapChildren)
	return nil
}

// Stop stops the reaper, waiting for its goroutine to exit.
func Stop() error {
	mutex.Lock()
	if !started {
		mutex.Unlock()
		return nil
	}
	mutex.Unlock()

	reaperTomb.Kill(nil)
	reaperTomb.Wait()
	reaperTomb = tomb.Tomb{}

	mutex.Lock()
	started = false
	mutex.Unlock()
	return nil
}

func setChildSubreaper() (bool, error) {
	err := unix.Prctl(unix.PR_SET_CHILD_SUBREAPER, 1, 0, 0, 0)
	if err == unix.EINVAL {
		return false, nil
	}
	return true, err
}

func reapChildren() error {
	logger.Debugf("Reaper started, waiting for SIGCHLD.")
	sigChld := make(chan os.Signal, 1)
	signal.Notify(sigChld, unix.SIGCHLD)
	for {
		select {
		case <-sigChld:
			reapOnce()
		case <-reaperTomb.Dying():
			signal.Reset(unix.SIGCHLD)
			logger.Debugf("Reaper stopped.")
			return nil
		}
	}
}

// reapOnce drains every pending status change until none remain.
func reapOnce() {
	for {
		var status unix.WaitStatus
		pid, err := unix.Wait4(-1, &status, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		switch err {
		case nil:
			if pid <= 0 {
				return
			}
			deliver(pid, status)

		case unix.ECHILD:
			return

		default:
			logger.Noticef("Cannot wait for child process: %v", err)
			return
		}
	}
}

func deliver(pid int, status unix.WaitStatus) {
	var change Change
	change.Pid = pid

	switch {
	case status.Exited():
		change.State = Exited
		change.ExitStatus = status.ExitStatus()
		logger.Debugf("Reaped PID %d which exited with code %d.", pid, change.ExitStatus)
	case status.Signaled():
		change.State = Signaled
		change.Signal = int(status.Signal())
		logger.Debugf("Reaped PID %d killed by signal %d.", pid, change.Signal)
	case status.Stopped():
		change.State = Stopped
		change.Signal = int(status.StopSignal())
		logger.Debugf("PID %d stopped by signal %d.", pid, change.Signal)
	case status.Continued():
		change.State = Continued
		logger.Debugf("PID %d continued.", pid)
	default:
		return
	}

	metrics.Reaped()

	mutex.Lock()
	ch := waiters[pid]
	mutex.Unlock()
	if ch != nil {
		select {
		case ch <- change:
		default:
		}
	}
}

// Track registers pid so that future status changes for it are delivered
// on the returned channel. Must be called before the reaper can observe
// any change for pid (typically right after fork success, under the same
// lock that protects the fork, mirroring Pebble's StartCommand).
//
// Idempotent: if pid is already tracked (a stopped job being resumed via
// fg/bg, whose original channel nobody has drained yet), the existing
// channel is returned rather than replaced, so a second caller can't
// orphan whatever is still reading from the first one.
func Track(pid int) <-chan Change {
	mutex.Lock()
	defer mutex.Unlock()
	if ch, ok := waiters[pid]; ok {
		return ch
	}
	ch := make(chan Change, 8)
	waiters[pid] = ch
	return ch
}

// TrackCommand starts cmd and registers its pid with the reaper, holding
// the lock across both so that a SIGCHLD racing the fork can't be
// delivered before anyone is listening: reapOnce's map lookup takes the
// same lock, so it blocks until this function has inserted the waiters
// entry, exactly as Pebble's StartCommand does for its pids map.
func TrackCommand(cmd *exec.Cmd) (<-chan Change, error) {
	mutex.Lock()
	defer mutex.Unlock()

	if !started {
		panic("internal error: reaper must be started")
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	ch := make(chan Change, 8)
	waiters[cmd.Process.Pid] = ch
	return ch, nil
}

// Untrack stops delivering status changes for pid and releases its channel.
func Untrack(pid int) {
	mutex.Lock()
	defer mutex.Unlock()
	delete(waiters, pid)
}

// Probe reports whether pid still exists, using a zero-signal kill probe.
// If waitpid reports no change but the probe fails with "no such
// process", the caller should treat the job as gone.
func Probe(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil
}
