package termctl_test

import (
	"os"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/termctl"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&TermctlSuite{})

type TermctlSuite struct{}

// TestIsInteractiveFalseForRegularFile exercises the non-terminal path:
// term.IsTerminal rejects a plain file immediately, without attempting the
// TIOCGPGRP probe (which would otherwise fail with ENOTTY).
func (s *TermctlSuite) TestIsInteractiveFalseForRegularFile(c *C) {
	f, err := os.CreateTemp(c.MkDir(), "termctl")
	c.Assert(err, IsNil)
	defer f.Close()
	c.Check(termctl.IsInteractive(int(f.Fd())), Equals, false)
}

func (s *TermctlSuite) TestCurrentForegroundFailsOnRegularFile(c *C) {
	f, err := os.CreateTemp(c.MkDir(), "termctl")
	c.Assert(err, IsNil)
	defer f.Close()
	_, err = termctl.CurrentForeground(int(f.Fd()))
	c.Check(err, NotNil)
}

func (s *TermctlSuite) TestGetStateFailsOnRegularFile(c *C) {
	f, err := os.CreateTemp(c.MkDir(), "termctl")
	c.Assert(err, IsNil)
	defer f.Close()
	_, err = termctl.GetState(int(f.Fd()))
	c.Check(err, NotNil)
}
