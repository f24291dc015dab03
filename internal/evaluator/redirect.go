package evaluator

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/tree"
)

// savedFds snapshots the shell's real stdin/stdout/stderr so a
// redirection (or pipeline stage) can rewire them and later restore the
// originals.
type savedFds struct {
	in, out, err int
}

func saveStdFds() (savedFds, error) {
	var s savedFds
	var err error
	if s.in, err = unix.Dup(unix.Stdin); err != nil {
		return s, fmt.Errorf("cannot save stdin: %w", err)
	}
	if s.out, err = unix.Dup(unix.Stdout); err != nil {
		unix.Close(s.in)
		return s, fmt.Errorf("cannot save stdout: %w", err)
	}
	if s.err, err = unix.Dup(unix.Stderr); err != nil {
		unix.Close(s.in)
		unix.Close(s.out)
		return s, fmt.Errorf("cannot save stderr: %w", err)
	}
	return s, nil
}

func (s savedFds) restore() {
	unix.Dup2(s.in, unix.Stdin)
	unix.Dup2(s.out, unix.Stdout)
	unix.Dup2(s.err, unix.Stderr)
	unix.Close(s.in)
	unix.Close(s.out)
	unix.Close(s.err)
}

// evalRedirect saves all three std fds unconditionally (so chained
// redirections unwind cleanly), opens the target with the flags the node
// kind dictates, dups it onto the right standard fd(s), recurses, then
// restores.
func (c *Context) evalRedirect(n *tree.Node, opts evalOptions) int {
	if len(n.Argv) == 0 {
		fmt.Fprintln(c.stderr, "gosh: redirection missing target file")
		return 1
	}
	path := n.Argv[0]

	saved, err := saveStdFds()
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", path, err)
		return 1
	}

	flags, mode := redirectFlags(n.Kind)
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, mode)
	if err != nil {
		saved.restore()
		fmt.Fprintf(c.stderr, "%s: %v\n", path, err)
		return 1
	}

	// Builtins write through Context.stdout/stderr rather than the kernel
	// fd, so a redirection has to rewire those fields too, or a builtin's
	// output (e.g. `echo hi > file`) never reaches the target even though
	// the fd under it was dup2'd correctly.
	oldStdout, oldStderr := c.stdout, c.stderr
	var file *os.File
	switch n.Kind {
	case tree.REDIR_IN:
		unix.Dup2(fd, unix.Stdin)
		unix.Close(fd)
	case tree.REDIR_OUT, tree.REDIR_APPEND:
		unix.Dup2(fd, unix.Stdout)
		file = os.NewFile(uintptr(fd), path)
		c.stdout = file
	case tree.REDIR_ERR:
		unix.Dup2(fd, unix.Stderr)
		file = os.NewFile(uintptr(fd), path)
		c.stderr = file
	case tree.REDIR_ERR_OUT:
		unix.Dup2(fd, unix.Stdout)
		unix.Dup2(fd, unix.Stderr)
		file = os.NewFile(uintptr(fd), path)
		c.stdout = file
		c.stderr = file
	}

	status := c.eval(n.Left, opts)

	c.stdout, c.stderr = oldStdout, oldStderr
	if file != nil {
		file.Close()
	}
	saved.restore()
	return status
}

func redirectFlags(k tree.Kind) (flags int, mode uint32) {
	switch k {
	case tree.REDIR_IN:
		return unix.O_RDONLY, 0
	case tree.REDIR_OUT, tree.REDIR_ERR, tree.REDIR_ERR_OUT:
		return unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC, 0644
	case tree.REDIR_APPEND:
		return unix.O_WRONLY | unix.O_CREAT | unix.O_APPEND, 0644
	default:
		return unix.O_RDONLY, 0
	}
}
