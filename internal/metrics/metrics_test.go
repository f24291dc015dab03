package metrics_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	. "gopkg.in/check.v1"

	"github.com/pboisselier/gosh/internal/metrics"
)

func Test(t *testing.T) { TestingT(t) }

var _ = Suite(&MetricsSuite{})

type MetricsSuite struct{}

func (s *MetricsSuite) TestCountersDoNotPanic(c *C) {
	metrics.JobsLaunched(true)
	metrics.JobsLaunched(false)
	metrics.JobsOverflowed()
	metrics.JobsRunning(3)
	metrics.SignalHandled("SIGINT")
	metrics.BuiltinExecuted("cd")
	metrics.Reaped()
}

func (s *MetricsSuite) TestDebugServerOnExplicitPortIsReachable(c *C) {
	srv, err := metrics.StartDebugServer("127.0.0.1:19091")
	c.Assert(err, IsNil)
	defer metrics.Shutdown(srv)

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get("http://127.0.0.1:19091/metrics")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.Assert(err, IsNil)
	defer resp.Body.Close()
	c.Check(resp.StatusCode, Equals, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	c.Check(string(body), Matches, `(?s).*gosh_jobs_running.*`)
}
