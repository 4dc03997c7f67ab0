package commands

import (
	"quill/internal/debug"
	"quill/internal/script"
)

// StopCommand ends the current queue. Stopping is cooperative: entries
// already handed to background work keep running, but nothing further
// advances.
type StopCommand struct{}

var stopMeta = &script.CommandMeta{
	Name:       "stop",
	Syntax:     "stop",
	MinArgs:    0,
	MaxArgs:    0,
	Procedural: true,
}

func (c *StopCommand) Meta() *script.CommandMeta { return stopMeta }

func (c *StopCommand) Parse(entry *script.Entry) error { return nil }

func (c *StopCommand) Execute(entry *script.Entry) error {
	debug.Report(entry, "stop", "queue="+entry.Queue.Name())
	entry.Queue.Clear()
	entry.Queue.Stop()
	return nil
}
