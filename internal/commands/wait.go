package commands

import (
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/queue"
	"quill/internal/script"
)

// WaitCommand delays a queue for a duration. Delta-time waiting follows the
// heartbeat's accumulated time; the "system" flag waits on the wall clock
// instead. Waiting on an instant queue forces it into timed mode.
type WaitCommand struct{}

var waitMeta = &script.CommandMeta{
	Name:            "wait",
	Syntax:          "wait (<duration>) (queue:<id>) (system)",
	MinArgs:         0,
	MaxArgs:         3,
	PrefixesHandled: []string{"queue"},
	BooleansHandled: []string{"system"},
}

func (c *WaitCommand) Meta() *script.CommandMeta { return waitMeta }

func (c *WaitCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if !arg.HasPrefix() && !entry.HasObject("delay") {
			delay, err := arg.AsElement().AsDuration()
			if err != nil {
				return script.InvalidArguments("invalid duration '%s'", arg.Value())
			}
			entry.AddObject("delay", delay)
		} else {
			arg.ReportUnhandled()
		}
	}
	entry.DefaultObject("delay", object.NewDuration(3))
	return nil
}

func (c *WaitCommand) Execute(entry *script.Entry) error {
	target := entry.Queue
	if qArg := entry.ArgForPrefixAsElement("queue", ""); qArg != nil {
		named, ok := queue.ByName(qArg.String())
		if !ok {
			return script.InvalidArguments("unknown queue '%s'", qArg.String())
		}
		target = named
	}
	delay, _ := entry.Object("delay").(*object.Duration)
	if delay == nil {
		delay = object.NewDuration(3)
	}
	system := entry.ArgAsBoolean("system")
	mode := "delta"
	if system {
		mode = "system"
	}
	debug.Report(entry, "wait", "delay="+delay.Identify(), "queue="+target.Name(), "mode="+mode)
	var tracker script.DelayTracker
	if system {
		tracker = queue.NewSystemDelay(delay.Millis())
	} else {
		tracker = queue.NewDeltaDelay(target.Scheduler(), delay.Millis())
	}
	if target.IsTimed() {
		target.SetDelay(tracker)
		return nil
	}
	entry.SetInstant(false)
	debug.EchoDebug(entry, "forcing queue %s into a timed queue", target.Name())
	target.ForceToTimed(tracker)
	return nil
}
