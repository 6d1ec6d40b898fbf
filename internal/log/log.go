// Package log provides the verbosity-gated diagnostic logging used by the
// CLI and interpreter, built directly on the standard log package — the
// same choice the source runtime makes throughout cmd/sentra (no logging
// library appears anywhere in the example pack to adopt in its place; see
// DESIGN.md).
package log

import (
	"log"
	"os"
)

var std = log.New(os.Stderr, "", 0)

// Level is the CLI's -v/-vv/-vvv verbosity (§6).
var Level int

func SetLevel(n int) { Level = n }

func Infof(format string, args ...interface{}) {
	if Level >= 1 {
		std.Printf("[info] "+format, args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if Level >= 2 {
		std.Printf("[debug] "+format, args...)
	}
}

func Tracef(format string, args ...interface{}) {
	if Level >= 3 {
		std.Printf("[trace] "+format, args...)
	}
}

func Fatalf(format string, args ...interface{}) {
	std.Fatalf(format, args...)
}
