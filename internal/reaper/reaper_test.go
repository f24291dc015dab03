package reaper_test

import (
	"os/exec"
	"testing"
	"time"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/reaper"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&ReaperSuite{})

type ReaperSuite struct{}

func (s *ReaperSuite) SetUpSuite(c *C) {
	c.Assert(reaper.Start(), IsNil)
}

func (s *ReaperSuite) TearDownSuite(c *C) {
	c.Assert(reaper.Stop(), IsNil)
}

func (s *ReaperSuite) TestTrackCommandReportsExitStatus(c *C) {
	cmd := exec.Command("sh", "-c", "exit 3")
	ch, err := reaper.TrackCommand(cmd)
	c.Assert(err, IsNil)
	defer reaper.Untrack(cmd.Process.Pid)

	select {
	case change := <-ch:
		c.Check(change.State, Equals, reaper.Exited)
		c.Check(change.ExitStatus, Equals, 3)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for reaper to report exit")
	}
}

func (s *ReaperSuite) TestTrackCommandReportsSuccess(c *C) {
	cmd := exec.Command("true")
	ch, err := reaper.TrackCommand(cmd)
	c.Assert(err, IsNil)
	defer reaper.Untrack(cmd.Process.Pid)

	select {
	case change := <-ch:
		c.Check(change.State, Equals, reaper.Exited)
		c.Check(change.ExitStatus, Equals, 0)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for reaper to report exit")
	}
}

func (s *ReaperSuite) TestProbeDetectsLiveAndGoneProcesses(c *C) {
	cmd := exec.Command("sleep", "5")
	ch, err := reaper.TrackCommand(cmd)
	c.Assert(err, IsNil)
	pid := cmd.Process.Pid
	defer reaper.Untrack(pid)

	c.Check(reaper.Probe(pid), Equals, true)
	cmd.Process.Kill()

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for reaper to report kill")
	}
	c.Check(reaper.Probe(pid), Equals, false)
}
