package commands

import (
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// DetermineCommand records an outcome value on the queue for its caller to
// consume. By default determining ends the queue; "passively" keeps it
// running so multiple outcomes can accumulate.
type DetermineCommand struct{}

// DetermineNone is the outcome recorded when no value is given.
const DetermineNone = "none"

var determineMeta = &script.CommandMeta{
	Name:            "determine",
	Syntax:          "determine (passively) [<value>]",
	MinArgs:         1,
	MaxArgs:         2,
	Procedural:      true,
	BooleansHandled: []string{"passively", "passive"},
}

func (c *DetermineCommand) Meta() *script.CommandMeta { return determineMeta }

func (c *DetermineCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if !entry.HasObject("outcome") {
			entry.AddObject("outcome", arg.Object())
		} else {
			arg.ReportUnhandled()
		}
	}
	entry.DefaultObject("outcome", object.NewElement(DetermineNone))
	return nil
}

func (c *DetermineCommand) Execute(entry *script.Entry) error {
	outcome := entry.Object("outcome")
	passively := entry.ArgAsBoolean("passively") || entry.ArgAsBoolean("passive")
	debug.Report(entry, "determine", "outcome="+outcome.Identify())
	entry.Queue.AddDetermination(outcome)
	if !passively {
		entry.Queue.Clear()
		entry.Queue.Stop()
	}
	return nil
}
