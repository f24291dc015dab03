package builtin

// exitBuiltin implements `exit`: terminate the shell process with status 0.
type exitBuiltin struct{}

func (exitBuiltin) Run(sh Shell, args []string) int {
	sh.Exit(0)
	return 0 // unreachable; Exit terminates the process
}
