// Package commands holds the built-in command set. Each command registers
// its dispatch contract (argument bounds, reserved prefixes, procedural and
// holdable capability) and supplies the parse and execute steps.
package commands

import (
	"io"
	"os"
	"sync"

	"quill/internal/script"
)

// Output is the host-visible sink the echo command writes to.
var Output io.Writer = os.Stdout

var registerOnce sync.Once

// RegisterCore installs the built-in commands into the registry consulted by
// entry preprocessing. Safe to call more than once.
func RegisterCore() {
	registerOnce.Do(func() {
		script.Commands.Register(&DefineCommand{})
		script.Commands.Register(&EchoCommand{})
		script.Commands.Register(&WaitCommand{})
		script.Commands.Register(&StopCommand{})
		script.Commands.Register(&DetermineCommand{})
		script.Commands.Register(&RepeatCommand{})
		script.Commands.Register(&RunCommand{})
		script.Commands.Register(&FileReadCommand{})
		script.Commands.Register(&FileWriteCommand{})
		script.Commands.Register(&FileCopyCommand{})
		script.Commands.Register(&WebGetCommand{})
		script.Commands.Register(&SQLCommand{})
	})
}
