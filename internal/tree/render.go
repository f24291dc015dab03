package tree

import (
	"github.com/canonical/x-go/strutil/shlex"
)

// Render reconstructs a shell command line equivalent to n, the inverse of
// a parser that would build n from source text. It exists so that
// backgrounding an entire sequence tree can be realized by re-executing
// the gosh binary with `-c <rendered text>` — Go offers no safe bare
// fork() to recursively re-evaluate a tree in a child process the way a
// C shell would, so the child re-derives the same tree from its rendered
// form instead.
func Render(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case EMPTY:
		return ""
	case SIMPLE:
		return shlex.Join(n.Argv)
	case SEQ:
		// `a & b` parses as SEQ(BACKGROUND(a), b); the `&` already
		// separates the two, and `a & ; b` would not parse.
		if n.Left != nil && n.Left.Kind == BACKGROUND {
			return Render(n.Left) + " " + Render(n.Right)
		}
		return Render(n.Left) + " ; " + Render(n.Right)
	case SEQ_AND:
		return Render(n.Left) + " && " + Render(n.Right)
	case SEQ_OR:
		return Render(n.Left) + " || " + Render(n.Right)
	case PIPE:
		return Render(n.Left) + " | " + Render(n.Right)
	case BACKGROUND:
		return Render(n.Left) + " &"
	case REDIR_IN:
		return Render(n.Left) + " < " + shlex.Join(n.Argv[:1])
	case REDIR_OUT:
		return Render(n.Left) + " > " + shlex.Join(n.Argv[:1])
	case REDIR_APPEND:
		return Render(n.Left) + " >> " + shlex.Join(n.Argv[:1])
	case REDIR_ERR:
		return Render(n.Left) + " 2> " + shlex.Join(n.Argv[:1])
	case REDIR_ERR_OUT:
		return Render(n.Left) + " &> " + shlex.Join(n.Argv[:1])
	default:
		return ""
	}
}
