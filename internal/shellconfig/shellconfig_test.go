package shellconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/shellconfig"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&ConfigSuite{})

type ConfigSuite struct{}

func (s *ConfigSuite) TestLoadMissingFileReturnsDefaults(c *C) {
	cfg, err := shellconfig.Load(filepath.Join(c.MkDir(), "no-such-file.yaml"))
	c.Assert(err, IsNil)
	c.Check(cfg, DeepEquals, shellconfig.Default())
}

func (s *ConfigSuite) TestLoadMergesYAMLOverDefaults(c *C) {
	path := filepath.Join(c.MkDir(), "goshrc.yaml")
	err := os.WriteFile(path, []byte("max_jobs: 8\ndebug_log: true\n"), 0644)
	c.Assert(err, IsNil)

	cfg, err := shellconfig.Load(path)
	c.Assert(err, IsNil)
	c.Check(cfg.MaxJobs, Equals, 8)
	c.Check(cfg.DebugLog, Equals, true)
	c.Check(cfg.HistoryFile, Equals, shellconfig.Default().HistoryFile)
}

func (s *ConfigSuite) TestLoadRejectsInvalidYAML(c *C) {
	path := filepath.Join(c.MkDir(), "goshrc.yaml")
	err := os.WriteFile(path, []byte("max_jobs: [this is not an int\n"), 0644)
	c.Assert(err, IsNil)

	_, err = shellconfig.Load(path)
	c.Check(err, NotNil)
}

func (s *ConfigSuite) TestLoadClampsNonPositiveMaxJobsToDefault(c *C) {
	path := filepath.Join(c.MkDir(), "goshrc.yaml")
	err := os.WriteFile(path, []byte("max_jobs: 0\n"), 0644)
	c.Assert(err, IsNil)

	cfg, err := shellconfig.Load(path)
	c.Assert(err, IsNil)
	c.Check(cfg.MaxJobs, Equals, shellconfig.Default().MaxJobs)
}
