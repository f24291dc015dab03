package evaluator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/builtin"
	"github.com/pboisselier/gosh/internal/jobtable"
	"github.com/pboisselier/gosh/internal/metrics"
	"github.com/pboisselier/gosh/internal/reaper"
	"github.com/pboisselier/gosh/internal/tree"
)

// launch handles a SIMPLE node: builtin dispatch first (no fork), else
// fork/exec via os/exec with the child in its own process group.
func (c *Context) launch(n *tree.Node, opts evalOptions) int {
	if len(n.Argv) == 0 {
		return StatusNone
	}

	if b, ok := builtin.Dispatch(n.Argv); ok {
		metrics.BuiltinExecuted(n.Argv[0])
		return b.Run(c, n.Argv[1:])
	}

	cmd := exec.Command(n.Argv[0], n.Argv[1:]...)
	// Inherit whatever currently sits on the shell's own fd 0/1/2; any
	// redirection or pipeline stage dup2's onto those real fds before
	// reaching here (internal/evaluator/redirect.go, pipeline.go), so the
	// child sees the rewired descriptors exactly as a C fork/exec would.
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// reaper.TrackCommand holds its lock across Start and registration so
	// no SIGCHLD can be lost between fork and registration (mirrors the
	// locking discipline of Pebble's reaper StartCommand).
	ch, err := reaper.TrackCommand(cmd)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			fmt.Fprintf(c.stderr, "%s: command not found\n", n.Argv[0])
			return 1
		}
		fmt.Fprintf(c.stderr, "%s: %v\n", n.Argv[0], err)
		return 1
	}

	pid := cmd.Process.Pid
	job, err := c.jobs.Register(pid, pid, opts.Background, n.Argv[0])
	if err != nil {
		reaper.Untrack(pid)
		fmt.Fprintln(c.stderr, "gosh: job table full, cannot track another background process")
		_ = unix.Kill(-pid, unix.SIGKILL)
		return 1
	}

	// Parent-side setpgid races the child's own Setpgid (set via
	// SysProcAttr); calling it from both sides makes group membership
	// deterministic regardless of fork scheduling.
	_ = unix.Setpgid(pid, pid)

	if opts.Background {
		c.jobs.SetForeground(-1)
		c.spawnWatcher(pid, ch)
		if c.interactive {
			fmt.Fprintf(c.stdout, "[%d] %d\n", job.JID, pid)
		}
		return StatusBGLaunched
	}

	c.jobs.SetForeground(job.JID)
	if c.interactive {
		c.giveTerminal(pid)
	}
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
	// Stopped in the foreground (Ctrl-Z): leave it registered so the user
	// can `fg`/`bg` it later. Its BG flag keeps its foreground value, so
	// ReapDone does not announce its later completion.
	c.jobs.SetForeground(-1)
	return StatusBGLaunched
}

