package builtin

import "fmt"

// jobsBuiltin implements `jobs`: print every non-free job slot, in the
// same "[jid] state label PID: pid" shape ReapDone's completion
// notifications use.
type jobsBuiltin struct{}

func (jobsBuiltin) Run(sh Shell, args []string) int {
	for _, j := range sh.Jobs().Snapshot() {
		fmt.Fprintf(sh.Stdout(), "[%d] %s\t%s\tPID: %d\n", j.JID, j.State, j.Label, j.Pid)
	}
	return 0
}
