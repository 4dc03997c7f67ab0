package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"quill/internal/debug"
)

// Command is one variant of the command keyword set. Parse translates the
// entry's resolved arguments into named values on the entry; Execute performs
// the command. Both report contract violations as errors rather than
// panicking, and both run on the heartbeat goroutine.
type Command interface {
	Meta() *CommandMeta
	Parse(entry *Entry) error
	Execute(entry *Entry) error
}

// CommandMeta declares a command's dispatch contract.
type CommandMeta struct {
	Name   string
	Syntax string

	MinArgs int
	MaxArgs int

	// Procedural marks the command safe to run inside procedure queues,
	// which must not produce host-visible side effects.
	Procedural bool

	// Holdable marks a command that may suspend its queue until background
	// work completes ("~" prefix support).
	Holdable bool

	// PrefixesHandled are prefixes the command reads by direct lookup; the
	// matching arguments are removed from the ordinary argument stream.
	PrefixesHandled []string

	// BooleansHandled are raw argument words the command reads as flags by
	// direct lookup, removed from the ordinary stream the same way.
	BooleansHandled []string

	// PrefixRemap maps alias prefix names onto their canonical form.
	PrefixRemap map[string]string
}

func (m *CommandMeta) handlesPrefix(prefix string) bool {
	for _, p := range m.PrefixesHandled {
		if p == prefix {
			return true
		}
	}
	return false
}

func (m *CommandMeta) handlesRawValue(value string) bool {
	for _, b := range m.BooleansHandled {
		if b == value {
			return true
		}
	}
	return false
}

// Usage renders the syntax hint shown with invalid-argument reports.
func (m *CommandMeta) Usage() string {
	return "- " + m.Syntax
}

// InvalidArgumentsError is the user-facing signal for argument contract
// violations at dispatch time. The executor reports it with the command's
// usage string and fails the single entry.
type InvalidArgumentsError struct {
	Message string
}

func (e *InvalidArgumentsError) Error() string { return e.Message }

func InvalidArguments(format string, a ...any) error {
	return &InvalidArgumentsError{Message: fmt.Sprintf(format, a...)}
}

func IsInvalidArguments(err error) bool {
	var iae *InvalidArgumentsError
	return errors.As(err, &iae)
}

// Registry maps command keywords to handlers. New commands register without
// touching the dispatcher.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Commands is the registry consulted during entry preprocessing.
var Commands = NewRegistry()

func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd.Meta().Name)] = cmd
}

// Lookup finds a handler by keyword, case-insensitively.
func (r *Registry) Lookup(keyword string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[strings.ToLower(keyword)]
	return cmd, ok
}

// invalidCommand is substituted for unknown or malformed entries so a broken
// command line still constructs a valid, debuggable entry. Executing it fails
// with a descriptive message instead of corrupting the queue.
type invalidCommand struct{}

var invalidCommandMeta = &CommandMeta{
	Name:       "invalid",
	Syntax:     "invalid [unknown or malformed command]",
	MinArgs:    0,
	MaxArgs:    -1,
	Procedural: true,
}

func (c *invalidCommand) Meta() *CommandMeta { return invalidCommandMeta }

func (c *invalidCommand) Parse(entry *Entry) error { return nil }

func (c *invalidCommand) Execute(entry *Entry) error {
	// An entry broken at construction still remembers the intended
	// handler's syntax; surface it with the failure.
	if hint := entry.Internal.usageHint; hint != "" {
		debug.EchoError(entry, "cannot execute command '%s': invalid arguments", entry.CommandName())
		debug.Log("usage: %s", hint)
		return fmt.Errorf("invalid arguments for command: %s", entry.CommandName())
	}
	debug.EchoError(entry, "cannot execute command '%s': unknown command or invalid arguments", entry.CommandName())
	return fmt.Errorf("unknown command or invalid arguments: %s", entry.CommandName())
}

// InvalidCommand is the shared reporting stub instance.
var InvalidCommand Command = &invalidCommand{}
