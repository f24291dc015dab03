package evaluator

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/reaper"
	"github.com/pboisselier/gosh/internal/tree"
)

// evalSequence handles `;`, `&&`, and `||`.
func (c *Context) evalSequence(n *tree.Node, opts evalOptions) int {
	if opts.Background {
		return c.forkSequence(n)
	}

	left := c.eval(n.Left, evalOptions{})
	leftStatus := c.normalize(left)

	switch n.Kind {
	case tree.SEQ:
		return c.eval(n.Right, evalOptions{})
	case tree.SEQ_AND:
		if leftStatus == 0 {
			return c.eval(n.Right, evalOptions{})
		}
		return left
	case tree.SEQ_OR:
		if leftStatus != 0 {
			return c.eval(n.Right, evalOptions{})
		}
		return left
	default:
		return left
	}
}

// forkSequence runs an entire sequence tree as a single backgrounded job:
// fork a child, restore default signal dispositions and its own process
// group in the child, evaluate the same node in foreground mode there, and
// exit with the normalized status. The parent registers the child as a
// job labelled "Sequence" and returns the BG-launched sentinel so it
// never overwrites $? with a meaningless value.
func (c *Context) forkSequence(n *tree.Node) int {
	// Go has no safe bare fork() that could recursively re-evaluate n in a
	// freshly forked child the way a C shell would; the runtime's
	// goroutines, GC, and signal machinery aren't fork-safe past the fork
	// point. Instead, re-exec this same binary with `-c <rendered tree>`:
	// the child gets a genuinely fresh process (so "restore default
	// signals in the child" is simply what a new process image already
	// has) and re-derives the identical tree from its rendered form.
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(c.stderr, "gosh: cannot background sequence: %v\n", err)
		return 1
	}

	cmd := exec.Command(exe, "-c", tree.Render(n))
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	ch, err := reaper.TrackCommand(cmd)
	if err != nil {
		fmt.Fprintf(c.stderr, "gosh: cannot background sequence: %v\n", err)
		return 1
	}

	pid := cmd.Process.Pid
	job, err := c.jobs.Register(pid, pid, true, "Sequence")
	if err != nil {
		reaper.Untrack(pid)
		_ = unix.Kill(-pid, unix.SIGKILL)
		fmt.Fprintln(c.stderr, "gosh: job table full, cannot track another background process")
		return 1
	}
	_ = unix.Setpgid(pid, pid)

	c.spawnWatcher(pid, ch)
	if c.interactive {
		fmt.Fprintf(c.stdout, "[%d] %d\n", job.JID, pid)
	}
	return StatusBGLaunched
}
