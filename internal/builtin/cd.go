package builtin

import "fmt"

// cdBuiltin implements `cd [dir]`: no argument is a no-op (HOME
// expansion is a known gap), an argument attempts to change the
// working directory.
type cdBuiltin struct{}

func (cdBuiltin) Run(sh Shell, args []string) int {
	if len(args) == 0 {
		return 0
	}
	if err := sh.Chdir(args[0]); err != nil {
		fmt.Fprintln(sh.Stderr(), "Unable to change directory")
		return 1
	}
	return 0
}
