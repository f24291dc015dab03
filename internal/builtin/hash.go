package builtin

import "fmt"

// hashBuiltin implements `hash <text>`: print the command dispatch hash
// of <text> in hex.
type hashBuiltin struct{}

func (hashBuiltin) Run(sh Shell, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(sh.Stderr(), "hash: missing operand")
		return 1
	}
	fmt.Fprintf(sh.Stdout(), "%x\n", Hash(args[0]))
	return 0
}
