package commands

import (
	"strconv"
	"strings"

	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/queue"
	"quill/internal/script"
)

// RunCommand starts a new queue from a task script container. The new queue
// runs independently; "~run" suspends the calling queue until the child
// stops, and "save:" exposes the created queue id and its determinations.
type RunCommand struct{}

var runMeta = &script.CommandMeta{
	Name:            "run",
	Syntax:          "run [<script>] (def:<value>|...) (instantly)",
	MinArgs:         1,
	MaxArgs:         3,
	Holdable:        true,
	PrefixesHandled: []string{"def"},
	BooleansHandled: []string{"instantly"},
}

func (c *RunCommand) Meta() *script.CommandMeta { return runMeta }

func (c *RunCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if !entry.HasObject("script") {
			entry.AddObject("script", arg.AsElement())
		} else {
			arg.ReportUnhandled()
		}
	}
	if !entry.HasObject("script") {
		return script.InvalidArguments("must specify a script to run")
	}
	return nil
}

func (c *RunCommand) Execute(entry *script.Entry) error {
	scriptName := entry.Element("script")
	container, ok := script.ContainerByName(scriptName.String())
	if !ok {
		return script.InvalidArguments("unknown script '%s'", scriptName.String())
	}
	instantly := entry.ArgAsBoolean("instantly")
	debug.Report(entry, "run", "script="+container.Name, "instantly="+strconv.FormatBool(instantly))
	child := queue.New(queue.NewID(container.Name), entry.Queue.Scheduler())
	child.SetTimed(!instantly)
	if defArg := entry.ArgForPrefixAsElement("def", ""); defArg != nil {
		for i, value := range strings.Split(defArg.String(), "|") {
			child.AddDefinition(strconv.Itoa(i+1), object.NewElement(value))
		}
	}
	child.AddEntries(container.Entries())
	entry.AddObject("created_queue", object.NewElement(child.Name()))
	if entry.ShouldWaitFor() {
		held := entry
		child.OnStop(func() {
			held.AddObject("determinations", child.Determinations())
			held.SetFinished(true)
		})
	}
	child.Start()
	return nil
}
