// Package xlog is the engine's small structured-trace and logging helper,
// modeled on the teacher's use of github.com/TheBitDrifter/bark: fatal
// engine errors are wrapped with a call-site trace via AddTrace before a
// panic propagates, and structural-mutation diagnostics go through a
// pluggable Logger so the core stays silent by default.
package xlog

import (
	"fmt"
	"log"

	"github.com/TheBitDrifter/bark"
)

// AddTrace wraps err with the caller's file:line, matching the teacher's
// panic(bark.AddTrace(err)) call sites in entity.go and query.go.
func AddTrace(err error) error {
	if err == nil {
		return nil
	}
	return bark.AddTrace(err)
}

// Traced is a convenience for the common panic(xlog.Traced(err)) shape.
func Traced(err error) error {
	return AddTrace(err)
}

// Logger is the one-method logging interface a World stores (World.SetLogger,
// World.Logger, Config.SetLogger). No engine code calls Debugf: archetype
// creation, flushes and cyclic-dependency detection emit no log lines.
type Logger interface {
	Debugf(format string, args ...any)
}

// Nop is a Logger that discards everything; the Store's default.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}

// Std adapts Go's standard logger, matching the teacher's test-time use of
// the bare "log" package (see entity_test.go).
type Std struct {
	Prefix string
}

func (s Std) Debugf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if s.Prefix != "" {
		line = s.Prefix + ": " + line
	}
	log.Println(line)
}
