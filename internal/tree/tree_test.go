package tree_test

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/tree"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&TreeSuite{})

type TreeSuite struct{}

func (s *TreeSuite) TestIsRedirect(c *C) {
	redirects := []tree.Kind{tree.REDIR_IN, tree.REDIR_OUT, tree.REDIR_APPEND, tree.REDIR_ERR, tree.REDIR_ERR_OUT}
	for _, k := range redirects {
		c.Check(k.IsRedirect(), Equals, true, Commentf("kind=%s", k))
	}
	c.Check(tree.SIMPLE.IsRedirect(), Equals, false)
	c.Check(tree.PIPE.IsRedirect(), Equals, false)
}

func (s *TreeSuite) TestRenderSimple(c *C) {
	n := &tree.Node{Kind: tree.SIMPLE, Argv: []string{"echo", "hello world"}}
	c.Check(tree.Render(n), Equals, `echo "hello world"`)
}

func (s *TreeSuite) TestRenderPipelineAndRedirect(c *C) {
	n := &tree.Node{
		Kind: tree.REDIR_OUT,
		Argv: []string{"out.txt"},
		Left: &tree.Node{
			Kind: tree.PIPE,
			Left: &tree.Node{Kind: tree.SIMPLE, Argv: []string{"echo", "hi"}},
			Right: &tree.Node{
				Kind: tree.BACKGROUND,
				Left: &tree.Node{Kind: tree.SIMPLE, Argv: []string{"cat"}},
			},
		},
	}
	c.Check(tree.Render(n), Equals, "echo hi | cat & > out.txt")
}
