// Package builtin implements the eight commands the evaluator runs in its
// own process rather than forking: cd, echo, exit, help, hash, jobs, fg,
// bg. They're split out of internal/evaluator the way
// Pebble splits each CLI command into its own internals/cli/cmd_*.go file,
// one file per command here too, though these implement the small Builtin
// interface below rather than flags.Commander, since builtin argv is
// already tokenized by the parser and none of the eight take go-flags-style
// options.
package builtin

import (
	"io"

	"github.com/pboisselier/gosh/internal/jobtable"
)

// Shell is the minimal surface a builtin needs from the evaluator's
// Context, kept as an interface here (rather than importing
// internal/evaluator directly) so this package has no dependency on the
// evaluator — it is the evaluator that depends on builtin, not the
// other way around.
type Shell interface {
	Stdout() io.Writer
	Stderr() io.Writer
	LastStatus() int
	SetLastStatus(status int)
	Jobs() *jobtable.Table
	Interactive() bool
	Chdir(dir string) error
	Getwd() (string, error)
	Foreground(job jobtable.Job) int
	Background(job jobtable.Job) error
	Exit(status int)
}

// Builtin is one in-shell command.
type Builtin interface {
	// Run executes the builtin with its already-tokenized arguments
	// (argv[0], the command name itself, is not included) and returns the
	// command's exit status.
	Run(sh Shell, args []string) int
}

// additiveHash is a cheap precomputed hash: additive with a
// position-dependent multiplier. It's an optimization only — Dispatch
// always confirms with a string equality check after a hash hit.
func additiveHash(s string) int {
	hash := 0
	for i := 0; i < len(s); i++ {
		hash = (hash + int(s[i])*(i+1)) % 9973
	}
	return hash
}

type registeredBuiltin struct {
	name string
	hash int
	b    Builtin
}

var registry = buildRegistry()

func buildRegistry() []registeredBuiltin {
	names := map[string]Builtin{
		"cd":    cdBuiltin{},
		"echo":  echoBuiltin{},
		"exit":  exitBuiltin{},
		"help":  helpBuiltin{},
		"hash":  hashBuiltin{},
		"jobs":  jobsBuiltin{},
		"fg":    fgbgBuiltin{background: false},
		"bg":    fgbgBuiltin{background: true},
	}
	reg := make([]registeredBuiltin, 0, len(names))
	for name, b := range names {
		reg = append(reg, registeredBuiltin{name: name, hash: additiveHash(name), b: b})
	}
	return reg
}

// Dispatch matches argv[0] against the builtin table by hash then name
// equality, returning the matched Builtin or false if argv[0]
// isn't one of the eight.
func Dispatch(argv []string) (Builtin, bool) {
	if len(argv) == 0 {
		return nil, false
	}
	name := argv[0]
	h := additiveHash(name)
	for _, r := range registry {
		if r.hash == h && r.name == name {
			return r.b, true
		}
	}
	return nil, false
}

// Hash exposes additiveHash for the `hash` builtin itself.
func Hash(s string) int { return additiveHash(s) }
