package commands

import (
	"quill/internal/debug"
	"quill/internal/script"
)

// DefineCommand binds a named variable on the queue, visible to all its
// entries for the life of the queue.
type DefineCommand struct{}

var defineMeta = &script.CommandMeta{
	Name:       "define",
	Syntax:     "define [<name>] [<value>]",
	MinArgs:    2,
	MaxArgs:    2,
	Procedural: true,
}

func (c *DefineCommand) Meta() *script.CommandMeta { return defineMeta }

func (c *DefineCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if !entry.HasObject("name") {
			entry.AddObject("name", arg.AsElement())
		} else if !entry.HasObject("value") {
			entry.AddObject("value", arg.Object())
		} else {
			arg.ReportUnhandled()
		}
	}
	if !entry.HasObject("name") || !entry.HasObject("value") {
		return script.InvalidArguments("must specify a definition name and value")
	}
	return nil
}

func (c *DefineCommand) Execute(entry *script.Entry) error {
	name := entry.Element("name")
	value := entry.Object("value")
	debug.Report(entry, "define", "name="+name.String(), "value="+value.Identify())
	entry.Queue.AddDefinition(name.String(), value)
	return nil
}
