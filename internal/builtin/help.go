package builtin

import "fmt"

const helpText = `gosh builtins:
  cd [dir]     change the working directory
  echo [args]  print arguments
  exit         terminate the shell
  help         print this message
  hash <text>  print the command dispatch hash of <text>
  jobs         list tracked jobs
  fg [name]    resume a job in the foreground
  bg [name]    resume a job in the background
`

// helpBuiltin implements `help`: print a fixed help block.
type helpBuiltin struct{}

func (helpBuiltin) Run(sh Shell, args []string) int {
	fmt.Fprint(sh.Stdout(), helpText)
	return 0
}
