package logger_test

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/logger"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&LogSuite{})

type LogSuite struct{}

func (s *LogSuite) TestNoticefAlwaysShows(c *C) {
	buf, restore := logger.MockLogger(false)
	defer restore()
	logger.Noticef("hello %d", 1)
	c.Check(buf.String(), Equals, "hello 1\n")
}

func (s *LogSuite) TestDebugfHiddenByDefault(c *C) {
	buf, restore := logger.MockLogger(false)
	defer restore()
	logger.Debugf("xyzzy")
	c.Check(buf.String(), Equals, "")
}

func (s *LogSuite) TestDebugfShownWhenEnabled(c *C) {
	buf, restore := logger.MockLogger(true)
	defer restore()
	logger.Debugf("xyzzy")
	c.Check(buf.String(), Equals, "xyzzy\n")
}
