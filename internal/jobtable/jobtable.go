// Package jobtable is the fixed-capacity registry of live children the
// evaluator tracks, modeled on the mutex-guarded services map in Pebble's
// internals/overlord/servstate.ServiceManager.
package jobtable

import (
	"fmt"
	"io"
	"sync"

	"github.com/pboisselier/gosh/internal/metrics"
)

// State is a Job's lifecycle state.
type State int

const (
	// Running means the job's leader process is runnable or running.
	Running State = iota
	// Stopped means the job's leader process has been suspended (SIGTSTP/SIGSTOP).
	Stopped
	// Done means the job's leader process has exited or been killed by a signal.
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Job is one evaluator-tracked child process.
type Job struct {
	JID   int // slot index, stable for the job's lifetime
	Pid   int // leader PID; 0 means the slot is free
	Pgid  int // process group ID; equals Pid, each job is its own group
	BG    bool
	State State

	ExitStatus int // valid only when State == Done via normal exit
	TermSignal int // valid only when State == Done via signal

	Label string // up to 15 bytes of the command name
}

func truncateLabel(s string) string {
	if len(s) > 15 {
		return s[:15]
	}
	return s
}

// ErrOverflow is returned by Register when no job slot is free.
var ErrOverflow = fmt.Errorf("jobtable: job table full, cannot track another background process")

// Table is the fixed-capacity job registry. The zero value is not usable;
// use New.
type Table struct {
	mu   sync.Mutex
	jobs []Job

	// lastJob is the jid of the most recently registered job or of the job
	// most recently passed to SetForeground, or -1. Nothing else updates
	// it; resuming a job in the background leaves it unchanged.
	lastJob int
	// fgJob is the jid of the current foreground job, or -1.
	fgJob int
}

// New creates a Table with the given fixed capacity.
func New(capacity int) *Table {
	return &Table{
		jobs:    make([]Job, capacity),
		lastJob: -1,
		fgJob:   -1,
	}
}

// Register scans for the first free slot and initializes it there. jid
// equals the slot index, so jids are reused after Unregister. Returns
// ErrOverflow if the table is full.
func (t *Table) Register(pid, pgid int, bg bool, label string) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.jobs {
		if t.jobs[i].Pid == 0 {
			t.jobs[i] = Job{
				JID:   i,
				Pid:   pid,
				Pgid:  pgid,
				BG:    bg,
				State: Running,
				Label: truncateLabel(label),
			}
			t.lastJob = i
			metrics.JobsLaunched(bg)
			metrics.JobsRunning(t.countRunningLocked())
			return t.jobs[i], nil
		}
	}
	metrics.JobsOverflowed()
	return Job{}, ErrOverflow
}

// Unregister clears the slot for the given jid.
func (t *Table) Unregister(jid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if jid < 0 || jid >= len(t.jobs) {
		return
	}
	t.jobs[jid] = Job{}
	if t.lastJob == jid {
		t.lastJob = t.mostRecentLiveLocked()
	}
	if t.fgJob == jid {
		t.fgJob = -1
	}
	metrics.JobsRunning(t.countRunningLocked())
}

// Find returns the job tracking pid, if any.
func (t *Table) Find(pid int) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.jobs {
		if t.jobs[i].Pid == pid {
			return t.jobs[i], true
		}
	}
	return Job{}, false
}

// Get returns the job in the given slot, if live.
func (t *Table) Get(jid int) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if jid < 0 || jid >= len(t.jobs) || t.jobs[jid].Pid == 0 {
		return Job{}, false
	}
	return t.jobs[jid], true
}

// FindByLabel returns the first non-free slot whose label matches name.
func (t *Table) FindByLabel(name string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.jobs {
		if t.jobs[i].Pid != 0 && t.jobs[i].Label == name {
			return t.jobs[i], true
		}
	}
	return Job{}, false
}

// MostRecent returns the remembered "last job" if still live, else the
// non-DONE slot with the highest pid.
func (t *Table) MostRecent() (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastJob >= 0 && t.jobs[t.lastJob].Pid != 0 && t.jobs[t.lastJob].State != Done {
		return t.jobs[t.lastJob], true
	}
	jid := t.mostRecentLiveLocked()
	if jid < 0 {
		return Job{}, false
	}
	return t.jobs[jid], true
}

func (t *Table) mostRecentLiveLocked() int {
	best := -1
	for i := range t.jobs {
		if t.jobs[i].Pid == 0 || t.jobs[i].State == Done {
			continue
		}
		if best < 0 || t.jobs[i].Pid > t.jobs[best].Pid {
			best = i
		}
	}
	return best
}

func (t *Table) countRunningLocked() int {
	n := 0
	for i := range t.jobs {
		if t.jobs[i].Pid != 0 && t.jobs[i].State != Done {
			n++
		}
	}
	return n
}

// SetState updates the state/status/termsig fields for the slot tracking
// pid, as driven by reaper-reported waitpid results.
func (t *Table) SetState(pid int, state State, exitStatus, termSignal int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.jobs {
		if t.jobs[i].Pid == pid {
			t.jobs[i].State = state
			t.jobs[i].ExitStatus = exitStatus
			t.jobs[i].TermSignal = termSignal
			metrics.JobsRunning(t.countRunningLocked())
			return
		}
	}
}

// SetForeground records jid as the current foreground job, or -1 to clear.
func (t *Table) SetForeground(jid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fgJob = jid
	if jid >= 0 {
		t.lastJob = jid
	}
}

// Foreground returns the current foreground job, if any.
func (t *Table) Foreground() (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fgJob < 0 || t.jobs[t.fgJob].Pid == 0 {
		return Job{}, false
	}
	return t.jobs[t.fgJob], true
}

// ReapDone walks the table and clears every slot in state Done, optionally
// writing a completion notification for backgrounded jobs to w.
func (t *Table) ReapDone(notify bool, w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.jobs {
		j := t.jobs[i]
		if j.Pid == 0 || j.State != Done {
			continue
		}
		if notify && j.BG && w != nil {
			if j.TermSignal != 0 {
				fmt.Fprintf(w, "[%d]+ %s\t%s\tPID: %d\tTerminated with signal %d\n",
					j.JID, j.State, j.Label, j.Pid, j.TermSignal)
			} else {
				fmt.Fprintf(w, "[%d]+ %s\t%s\tPID: %d\tExit %d\n",
					j.JID, j.State, j.Label, j.Pid, j.ExitStatus)
			}
		}
		t.jobs[i] = Job{}
		if t.lastJob == i {
			t.lastJob = t.mostRecentLiveLocked()
		}
		if t.fgJob == i {
			t.fgJob = -1
		}
	}
	metrics.JobsRunning(t.countRunningLocked())
}

// Snapshot returns a copy of every non-free slot, ordered by jid, for the
// jobs builtin.
func (t *Table) Snapshot() []Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Job, 0, len(t.jobs))
	for i := range t.jobs {
		if t.jobs[i].Pid != 0 {
			out = append(out, t.jobs[i])
		}
	}
	return out
}

// Len returns the number of non-free slots whose job is not Done.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countRunningLocked()
}
