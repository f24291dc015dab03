// Package logger is a fairly minimal logging tool, adapted from Pebble's
// internals/logger: a package-level Logger swappable at init time, with
// Noticef for user-visible messages and Debugf gated behind debug mode.
package logger

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"sync"
)

// A Logger is a fairly minimal logging tool.
type Logger interface {
	// Noticef is for messages the user should see.
	Noticef(format string, v ...any)
	// Debugf is for messages that help debugging, shown only when enabled.
	Debugf(format string, v ...any)
}

type nullLogger struct{}

func (nullLogger) Noticef(format string, v ...any) {}
func (nullLogger) Debugf(format string, v ...any)  {}

// NullLogger discards everything written to it.
var NullLogger = nullLogger{}

type stderrLogger struct {
	debug bool
	std   *log.Logger
}

func (l *stderrLogger) Noticef(format string, v ...any) {
	l.std.Output(3, fmt.Sprintf("gosh: "+format, v...))
}

func (l *stderrLogger) Debugf(format string, v ...any) {
	if l.debug {
		l.std.Output(3, fmt.Sprintf("gosh: DEBUG: "+format, v...))
	}
}

var (
	logger     Logger = &stderrLogger{std: log.New(os.Stderr, "", log.LstdFlags)}
	loggerLock sync.Mutex
)

// SetLogger replaces the package-level logger (used by tests to capture
// output, and by cmd/gosh to install the debug-aware logger built from CLI
// flags).
func SetLogger(l Logger) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	logger = l
}

// SetDebug toggles Debugf output on the default stderr logger. It is a
// no-op if SetLogger has installed a custom Logger.
func SetDebug(enabled bool) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	if l, ok := logger.(*stderrLogger); ok {
		l.debug = enabled
	}
}

// Panicf notifies the user and then panics. Used only for unrecoverable
// init failures.
func Panicf(format string, v ...any) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	logger.Noticef("PANIC "+format, v...)
	panic(fmt.Sprintf(format, v...))
}

// Noticef notifies the user of something.
func Noticef(format string, v ...any) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	logger.Noticef(format, v...)
}

// Debugf records something useful for debugging, shown only when enabled.
func Debugf(format string, v ...any) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	logger.Debugf(format, v...)
}

type bufLogger struct {
	buf   *bytes.Buffer
	debug bool
}

func (l *bufLogger) Noticef(format string, v ...any) {
	fmt.Fprintf(l.buf, format+"\n", v...)
}

func (l *bufLogger) Debugf(format string, v ...any) {
	if l.debug {
		fmt.Fprintf(l.buf, format+"\n", v...)
	}
}

func (l *bufLogger) String() string { return l.buf.String() }

// MockLogger replaces the package-level logger with one that writes to an
// in-memory buffer, returning the buffer and a restore function. Used by
// tests that need to assert on log output.
func MockLogger(debug bool) (buf fmt.Stringer, restore func()) {
	loggerLock.Lock()
	old := logger
	l := &bufLogger{buf: &bytes.Buffer{}, debug: debug}
	logger = l
	loggerLock.Unlock()
	return l, func() {
		loggerLock.Lock()
		logger = old
		loggerLock.Unlock()
	}
}
