package builtin

import (
	"fmt"

	"github.com/pboisselier/gosh/internal/jobtable"
)

// fgbgBuiltin implements `fg`/`bg`, sharing their selection logic and
// differing only in the foreground/background transition.
type fgbgBuiltin struct {
	background bool
}

func (f fgbgBuiltin) Run(sh Shell, args []string) int {
	job, ok := selectJob(sh.Jobs(), args)
	if !ok {
		fmt.Fprintln(sh.Stderr(), "no job to resume")
		return 1
	}

	fmt.Fprintf(sh.Stdout(), "[%d]+ Resumed\t%s\n", job.JID, job.Label)

	if f.background {
		if job.State == jobtable.Running {
			fmt.Fprintln(sh.Stderr(), "already in background")
			return 1
		}
		if err := sh.Background(job); err != nil {
			fmt.Fprintf(sh.Stderr(), "bg: %v\n", err)
			return 1
		}
		return 0
	}

	return sh.Foreground(job)
}

// selectJob picks a job by label if a name argument was given; otherwise
// the most recently remembered live job wins.
func selectJob(jobs *jobtable.Table, args []string) (jobtable.Job, bool) {
	if len(args) > 0 {
		return jobs.FindByLabel(args[0])
	}
	return jobs.MostRecent()
}
