package jobtable_test

import (
	"bytes"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/jobtable"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&TableSuite{})

type TableSuite struct{}

func (s *TableSuite) TestRegisterAssignsStableSlot(c *C) {
	t := jobtable.New(2)
	j, err := t.Register(100, 100, false, "sleep")
	c.Assert(err, IsNil)
	c.Check(j.JID, Equals, 0)
	c.Check(j.Pid, Equals, 100)
	c.Check(j.State, Equals, jobtable.Running)
}

func (s *TableSuite) TestRegisterReusesFreedSlot(c *C) {
	t := jobtable.New(1)
	j1, err := t.Register(100, 100, false, "a")
	c.Assert(err, IsNil)
	t.Unregister(j1.JID)
	j2, err := t.Register(200, 200, false, "b")
	c.Assert(err, IsNil)
	c.Check(j2.JID, Equals, j1.JID)
}

func (s *TableSuite) TestRegisterOverflow(c *C) {
	t := jobtable.New(1)
	_, err := t.Register(100, 100, false, "a")
	c.Assert(err, IsNil)
	_, err = t.Register(200, 200, false, "b")
	c.Assert(err, Equals, jobtable.ErrOverflow)
}

func (s *TableSuite) TestFindByLabel(c *C) {
	t := jobtable.New(4)
	_, err := t.Register(100, 100, true, "sleep")
	c.Assert(err, IsNil)
	j, ok := t.FindByLabel("sleep")
	c.Assert(ok, Equals, true)
	c.Check(j.Pid, Equals, 100)

	_, ok = t.FindByLabel("missing")
	c.Check(ok, Equals, false)
}

func (s *TableSuite) TestMostRecentPrefersRememberedLastJob(c *C) {
	t := jobtable.New(4)
	j1, _ := t.Register(100, 100, true, "a")
	j2, _ := t.Register(50, 50, true, "b")
	// j2 was registered last, despite a lower pid.
	mr, ok := t.MostRecent()
	c.Assert(ok, Equals, true)
	c.Check(mr.JID, Equals, j2.JID)

	t.SetState(j1.Pid, jobtable.Done, 0, 0)
	_ = j1
}

func (s *TableSuite) TestMostRecentFallsBackToHighestPidWhenLastIsDone(c *C) {
	t := jobtable.New(4)
	j1, _ := t.Register(100, 100, true, "a")
	j2, _ := t.Register(50, 50, true, "b")
	t.SetState(j2.Pid, jobtable.Done, 0, 0)
	mr, ok := t.MostRecent()
	c.Assert(ok, Equals, true)
	c.Check(mr.JID, Equals, j1.JID)
}

func (s *TableSuite) TestSetForegroundAndForeground(c *C) {
	t := jobtable.New(4)
	j, _ := t.Register(100, 100, false, "a")
	_, ok := t.Foreground()
	c.Check(ok, Equals, false)

	t.SetForeground(j.JID)
	fg, ok := t.Foreground()
	c.Assert(ok, Equals, true)
	c.Check(fg.Pid, Equals, 100)

	t.SetForeground(-1)
	_, ok = t.Foreground()
	c.Check(ok, Equals, false)
}

func (s *TableSuite) TestReapDoneClearsSlotsAndNotifiesBackgroundJobs(c *C) {
	t := jobtable.New(4)
	j, _ := t.Register(100, 100, true, "sleep")
	t.SetState(j.Pid, jobtable.Done, 7, 0)

	var buf bytes.Buffer
	t.ReapDone(true, &buf)

	c.Check(buf.String(), Matches, `(?s).*Exit 7.*`)
	_, ok := t.Get(j.JID)
	c.Check(ok, Equals, false)
}

func (s *TableSuite) TestReapDoneSkipsNotificationForForegroundJobs(c *C) {
	t := jobtable.New(4)
	j, _ := t.Register(100, 100, false, "cmd")
	t.SetState(j.Pid, jobtable.Done, 0, 0)

	var buf bytes.Buffer
	t.ReapDone(true, &buf)
	c.Check(buf.String(), Equals, "")
}

func (s *TableSuite) TestSnapshotOrderedBySlot(c *C) {
	t := jobtable.New(4)
	t.Register(100, 100, false, "a")
	t.Register(200, 200, false, "b")
	snap := t.Snapshot()
	c.Assert(snap, HasLen, 2)
	c.Check(snap[0].Pid, Equals, 100)
	c.Check(snap[1].Pid, Equals, 200)
}
