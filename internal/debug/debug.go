// Package debug is the structured diagnostics sink for the script engine.
// The core never formats for a specific console or UI: everything funnels
// through slog so the host decides where events land.
package debug

import (
	"fmt"
	"log/slog"
)

// Debuggable supplies the context attrs attached to every event raised on
// behalf of a script element (command text, line number, queue id).
type Debuggable interface {
	DebugAttrs() []slog.Attr
	ShouldDebug() bool
}

// Verbose enables trace-level detail on queue advancement and tag resolution.
var Verbose = false

func attrsToArgs(attrs []slog.Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return args
}

// EchoError reports a script-level error with its source context. Errors are
// reported, never raised: a malformed entry must not abort its neighbors.
func EchoError(d Debuggable, format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if d != nil {
		slog.Error(msg, attrsToArgs(d.DebugAttrs())...)
		return
	}
	slog.Error(msg)
}

// EchoDebug reports execution detail for a script element, gated on the
// element's own debug setting.
func EchoDebug(d Debuggable, format string, a ...any) {
	if d != nil && !d.ShouldDebug() {
		return
	}
	msg := fmt.Sprintf(format, a...)
	if d != nil {
		slog.Debug(msg, attrsToArgs(d.DebugAttrs())...)
		return
	}
	slog.Debug(msg)
}

// Report logs a command execution report: the command name plus the values it
// parsed, in "name=value" form.
func Report(d Debuggable, name string, values ...string) {
	if d != nil && !d.ShouldDebug() {
		return
	}
	args := []any{slog.String("command", name)}
	for i, v := range values {
		args = append(args, slog.String(fmt.Sprintf("arg%d", i), v))
	}
	if d != nil {
		for _, a := range d.DebugAttrs() {
			args = append(args, a)
		}
	}
	slog.Debug("executing", args...)
}

// Log emits a bare informational event with no script context.
func Log(format string, a ...any) {
	slog.Info(fmt.Sprintf(format, a...))
}

// Error emits a bare error event with no script context.
func Error(format string, a ...any) {
	slog.Error(fmt.Sprintf(format, a...))
}
