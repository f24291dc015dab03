package evaluator

import (
	"github.com/pboisselier/gosh/internal/tree"
)

// eval recursively dispatches by node kind.
func (c *Context) eval(n *tree.Node, opts evalOptions) int {
	if n == nil {
		return StatusNone
	}

	switch n.Kind {
	case tree.EMPTY:
		return StatusNone

	case tree.SIMPLE:
		return c.launch(n, opts)

	case tree.SEQ, tree.SEQ_AND, tree.SEQ_OR:
		return c.evalSequence(n, opts)

	case tree.PIPE:
		return c.evalPipeline(n, opts)

	case tree.BACKGROUND:
		return c.eval(n.Left, evalOptions{Background: true})

	case tree.REDIR_IN, tree.REDIR_OUT, tree.REDIR_APPEND, tree.REDIR_ERR, tree.REDIR_ERR_OUT:
		return c.evalRedirect(n, opts)

	default:
		return StatusNone
	}
}
