// Command gosh is the process wrapper around the evaluator: it parses
// top-level flags, builds a command tree from either `-c` or a line read
// from stdin, and calls Context.Evaluate, mirroring cmd/pebble/main.go's
// flags-struct-plus-logger-wiring shape on a much smaller surface.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/canonical/go-flags"

	"github.com/pboisselier/gosh/internal/evaluator"
	"github.com/pboisselier/gosh/internal/logger"
	"github.com/pboisselier/gosh/internal/metrics"
	"github.com/pboisselier/gosh/internal/shellconfig"
	"github.com/pboisselier/gosh/internal/treebuilder"
)

// version is set by the release tooling; left at "unknown" in dev builds,
// the same pattern cmd/pebble/main.go uses for its own version string.
var version = "unknown"

type options struct {
	Command      string `short:"c" long:"command" description:"run a single command string and exit"`
	Debug        bool   `long:"debug" description:"enable debug logging"`
	DebugMetrics string `long:"debug-metrics" description:"address to serve Prometheus metrics on, e.g. :9090" value-name:"ADDR"`
	Version      bool   `long:"version" description:"print the version and exit"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if opts.Version {
		fmt.Println("gosh", version)
		return 0
	}

	logger.SetDebug(opts.Debug)

	cfg, err := shellconfig.Load(shellconfig.DefaultRCPath())
	if err != nil {
		logger.Noticef("Cannot load config: %v", err)
		cfg = shellconfig.Default()
	}

	if opts.DebugMetrics != "" {
		srv, err := metrics.StartDebugServer(opts.DebugMetrics)
		if err != nil {
			logger.Noticef("Cannot start debug metrics server: %v", err)
		} else {
			defer metrics.Shutdown(srv)
		}
	}

	evalOpts := []evaluator.Option{evaluator.WithMaxJobs(cfg.MaxJobs)}
	if cfg.Interactive != nil {
		evalOpts = append(evalOpts, evaluator.WithForceInteractive(*cfg.Interactive))
	}
	if cfg.DebugLog {
		logger.SetDebug(true)
	}
	ctx := evaluator.New(evalOpts...)

	if opts.Command != "" {
		n, err := treebuilder.Build(opts.Command)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
			return 1
		}
		return ctx.Evaluate(n)
	}

	if len(rest) > 0 {
		n, err := treebuilder.Build(rest[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
			return 1
		}
		return ctx.Evaluate(n)
	}

	return repl(ctx)
}

// repl is the "good enough to drive the evaluator end to end" stand-in for
// a real line-editing front end, treated as an external collaborator
// outside the evaluator's own scope.
func repl(ctx *evaluator.Context) int {
	scanner := bufio.NewScanner(os.Stdin)
	status := 0
	for scanner.Scan() {
		line := scanner.Text()
		n, err := treebuilder.Build(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "gosh: %v\n", err)
			status = 1
			continue
		}
		status = ctx.Evaluate(n)
	}
	return status
}
