package builtin

import (
	"fmt"
	"strings"
)

// statusSentinel is the token echo recognizes as "substitute $?". It's
// compared by value, not by the dispatch hash — that hash is only for
// builtin-name lookup, not for echo's own argument parsing.
const statusSentinel = "$?"

// echoBuiltin implements `echo`.
type echoBuiltin struct{}

func (echoBuiltin) Run(sh Shell, args []string) int {
	if len(args) > 0 && args[0] == statusSentinel {
		fmt.Fprintf(sh.Stdout(), "%d %s\n", sh.LastStatus(), strings.Join(args[1:], " "))
		return 0
	}
	fmt.Fprintln(sh.Stdout(), strings.Join(args, " "))
	return 0
}
