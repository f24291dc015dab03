package treebuilder_test

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/tree"
	"github.com/pboisselier/gosh/internal/treebuilder"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&BuilderSuite{})

type BuilderSuite struct{}

func (s *BuilderSuite) TestEmptyLine(c *C) {
	n, err := treebuilder.Build("")
	c.Assert(err, IsNil)
	c.Check(n.Kind, Equals, tree.EMPTY)
}

func (s *BuilderSuite) TestSimpleCommand(c *C) {
	n, err := treebuilder.Build("echo hello world")
	c.Assert(err, IsNil)
	c.Assert(n.Kind, Equals, tree.SIMPLE)
	c.Check(n.Argv, DeepEquals, []string{"echo", "hello", "world"})
}

func (s *BuilderSuite) TestSequenceIsLeftAssociative(c *C) {
	n, err := treebuilder.Build("a ; b ; c")
	c.Assert(err, IsNil)
	c.Assert(n.Kind, Equals, tree.SEQ)
	c.Assert(n.Left.Kind, Equals, tree.SEQ)
	c.Check(n.Left.Left.Argv, DeepEquals, []string{"a"})
	c.Check(n.Left.Right.Argv, DeepEquals, []string{"b"})
	c.Check(n.Right.Argv, DeepEquals, []string{"c"})
}

func (s *BuilderSuite) TestAndOrPrecedenceOverSequence(c *C) {
	n, err := treebuilder.Build("a && b ; c")
	c.Assert(err, IsNil)
	c.Assert(n.Kind, Equals, tree.SEQ)
	c.Assert(n.Left.Kind, Equals, tree.SEQ_AND)
	c.Check(n.Left.Left.Argv, DeepEquals, []string{"a"})
	c.Check(n.Left.Right.Argv, DeepEquals, []string{"b"})
}

func (s *BuilderSuite) TestPipePrecedenceOverAndOr(c *C) {
	n, err := treebuilder.Build("a | b || c")
	c.Assert(err, IsNil)
	c.Assert(n.Kind, Equals, tree.SEQ_OR)
	c.Assert(n.Left.Kind, Equals, tree.PIPE)
	c.Check(n.Left.Left.Argv, DeepEquals, []string{"a"})
	c.Check(n.Left.Right.Argv, DeepEquals, []string{"b"})
}

func (s *BuilderSuite) TestBackgroundWrapsPrecedingCommand(c *C) {
	n, err := treebuilder.Build("sleep 5 &")
	c.Assert(err, IsNil)
	c.Assert(n.Kind, Equals, tree.BACKGROUND)
	c.Check(n.Left.Argv, DeepEquals, []string{"sleep", "5"})
}

func (s *BuilderSuite) TestRedirections(c *C) {
	n, err := treebuilder.Build("sort < in.txt > out.txt")
	c.Assert(err, IsNil)
	c.Assert(n.Kind, Equals, tree.REDIR_OUT)
	c.Check(n.Argv, DeepEquals, []string{"out.txt"})
	c.Assert(n.Left.Kind, Equals, tree.REDIR_IN)
	c.Check(n.Left.Argv, DeepEquals, []string{"in.txt"})
	c.Check(n.Left.Left.Argv, DeepEquals, []string{"sort"})
}

func (s *BuilderSuite) TestDanglingRedirectionIsAnError(c *C) {
	_, err := treebuilder.Build("cat >")
	c.Check(err, NotNil)
}

func (s *BuilderSuite) TestRenderRoundTrip(c *C) {
	n, err := treebuilder.Build("echo hi | cat && echo done")
	c.Assert(err, IsNil)
	rendered := tree.Render(n)
	n2, err := treebuilder.Build(rendered)
	c.Assert(err, IsNil)
	c.Check(n2.Kind, Equals, n.Kind)
}
