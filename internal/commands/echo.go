package commands

import (
	"fmt"

	"quill/internal/debug"
	"quill/internal/script"
)

// EchoCommand writes a resolved message to the host output sink.
type EchoCommand struct{}

var echoMeta = &script.CommandMeta{
	Name:    "echo",
	Syntax:  "echo [<message>]",
	MinArgs: 1,
	MaxArgs: 1,
}

func (c *EchoCommand) Meta() *script.CommandMeta { return echoMeta }

func (c *EchoCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if !entry.HasObject("message") {
			entry.AddObject("message", arg.AsElement())
		} else {
			arg.ReportUnhandled()
		}
	}
	if !entry.HasObject("message") {
		return script.InvalidArguments("missing message argument")
	}
	return nil
}

func (c *EchoCommand) Execute(entry *script.Entry) error {
	message := entry.Element("message")
	debug.Report(entry, "echo", "message="+message.String())
	_, err := fmt.Fprintln(Output, message.String())
	return err
}
