package evaluator

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/pboisselier/gosh/internal/tree"
)

// evalPipeline handles `A | B`: create a close-on-exec pipe, run B as a
// background job reading from the pipe, then run A (with the caller's
// own FG/BG option) writing to it. The pipeline's status is A's status,
// the left-most stage.
//
// Known limitation, not redesigned: nested pipes combined with
// redirections or backgrounded sequences can leave a pipe end unclosed
// in some path and hang a reader. This is documented here rather than
// worked around.
func (c *Context) evalPipeline(n *tree.Node, opts evalOptions) int {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		fmt.Fprintf(c.stderr, "gosh: pipe: %v\n", err)
		return 1
	}
	readFd, writeFd := fds[0], fds[1]

	saved, err := saveStdFds()
	if err != nil {
		unix.Close(readFd)
		unix.Close(writeFd)
		fmt.Fprintf(c.stderr, "gosh: %v\n", err)
		return 1
	}

	// Install the read end as stdin and evaluate the right stage as a
	// background job before writing begins. It is launched like any other
	// background job, so an interactive shell prints its "[jid] pid" line.
	unix.Dup2(readFd, unix.Stdin)
	unix.Close(readFd)
	c.eval(n.Right, evalOptions{Background: true})

	// Restore stdin, install the write end as stdout, evaluate the left
	// stage with the caller's own options. The write fd is also wired in
	// as Context.stdout for the duration of that call, so a builtin left
	// stage (which writes through Context.stdout, not the kernel fd)
	// actually feeds the pipe instead of whatever stdout the shell
	// started with.
	unix.Dup2(saved.in, unix.Stdin)
	unix.Dup2(writeFd, unix.Stdout)

	oldStdout := c.stdout
	writeFile := os.NewFile(uintptr(writeFd), "|")
	c.stdout = writeFile
	status := c.eval(n.Left, opts)
	c.stdout = oldStdout
	writeFile.Close()

	saved.restore()
	return status
}
