package commands

import (
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// CallbackMarker is the synthetic argument on the re-entry record a loop
// appends after its cloned block. The NUL byte keeps it unwritable from
// script source.
const CallbackMarker = "\x00callback"

// RepeatCommand runs a nested block a fixed number of times. Iteration is
// implemented as pending-list surgery: the block is cloned per iteration with
// a callback entry appended, and the whole batch is injected at the queue
// head. "stop" and "next" are forward scans for the callback marker.
type RepeatCommand struct{}

var repeatMeta = &script.CommandMeta{
	Name:            "repeat",
	Syntax:          "repeat [stop/next/<amount>] (from:<#>) (as:<name>) [<commands>]",
	MinArgs:         1,
	MaxArgs:         3,
	Procedural:      true,
	PrefixesHandled: []string{"from", "as"},
	BooleansHandled: []string{"stop", "next", CallbackMarker},
}

func (c *RepeatCommand) Meta() *script.CommandMeta { return repeatMeta }

// repeatData lives on the loop's originating entry; the injected callback
// finds it through its owner pointer.
type repeatData struct {
	index         int64
	target        int64
	valueName     string
	originalValue object.Value
}

// reapplyAtEnd restores whatever the loop variable was bound to before the
// loop started. Loop variables are queue-global, not block-scoped.
func (d *repeatData) reapplyAtEnd(q script.Queue) {
	q.AddDefinition(d.valueName, d.originalValue)
}

func (c *RepeatCommand) Parse(entry *script.Entry) error {
	for _, arg := range entry.Arguments() {
		if arg.MatchesInteger() && !arg.HasPrefix() {
			entry.AddObject("quantity", arg.AsElement())
		} else if arg.Matches("{") {
			break
		} else {
			arg.ReportUnhandled()
		}
	}
	return nil
}

// isCallbackEntry recognizes the synthetic re-entry record for a loop.
func isCallbackEntry(e *script.Entry) bool {
	if e == nil || e.CommandName() != "repeat" {
		return false
	}
	args := e.OriginalArguments()
	return len(args) == 1 && args[0] == CallbackMarker
}

func (c *RepeatCommand) Execute(entry *script.Entry) error {
	q := entry.Queue
	switch {
	case entry.ArgAsBoolean("stop"):
		return c.executeStop(entry, q)
	case entry.ArgAsBoolean("next"):
		return c.executeNext(entry, q)
	case entry.ArgAsBoolean(CallbackMarker):
		return c.executeCallback(entry, q)
	default:
		return c.executeStart(entry, q)
	}
}

// scanForCallback looks forward through the pending list for this loop's
// callback marker. The loop body is ordinary queued entries, so skipping or
// stopping is pure list surgery.
func scanForCallback(q script.Queue) bool {
	for i := 0; i < q.Size(); i++ {
		if isCallbackEntry(q.EntryAt(i)) {
			return true
		}
	}
	return false
}

func (c *RepeatCommand) executeStop(entry *script.Entry, q script.Queue) error {
	debug.Report(entry, "repeat", "instruction=stop")
	if !scanForCallback(q) {
		debug.EchoError(entry, "cannot stop repeat: not in one")
		return nil
	}
	for q.Size() > 0 {
		head := q.EntryAt(0)
		if isCallbackEntry(head) {
			if owner := head.Owner(); owner != nil {
				if data, ok := owner.Data().(*repeatData); ok {
					data.reapplyAtEnd(q)
				}
			}
			q.RemoveFirst()
			break
		}
		q.RemoveFirst()
	}
	return nil
}

func (c *RepeatCommand) executeNext(entry *script.Entry, q script.Queue) error {
	debug.Report(entry, "repeat", "instruction=next")
	if !scanForCallback(q) {
		debug.EchoError(entry, "cannot 'repeat next': not in one")
		return nil
	}
	for q.Size() > 0 && !isCallbackEntry(q.EntryAt(0)) {
		q.RemoveFirst()
	}
	return nil
}

func (c *RepeatCommand) executeCallback(entry *script.Entry, q script.Queue) error {
	owner := entry.Owner()
	if owner == nil {
		debug.EchoError(entry, "repeat callback invalid: not a real callback")
		return nil
	}
	data, ok := owner.Data().(*repeatData)
	if !ok {
		debug.EchoError(entry, "repeat callback invalid: not a real callback")
		return nil
	}
	data.index++
	if data.index > data.target {
		data.reapplyAtEnd(q)
		debug.EchoDebug(entry, "repeat loop complete")
		return nil
	}
	debug.EchoDebug(entry, "repeat loop %d", data.index)
	q.AddDefinition(data.valueName, object.ElementFromInt(data.index))
	braced := script.BracedCommands(owner)
	batch := script.CloneBracedEntries(braced[0].Entries)
	callback := entry.Clone()
	callback.SetOwner(owner)
	batch = append(batch, callback)
	for _, e := range batch {
		e.SetInstant(true)
	}
	q.InjectAtStart(batch)
	return nil
}

func (c *RepeatCommand) executeStart(entry *script.Entry, q script.Queue) error {
	asName := entry.ArgForPrefixAsElement("as", "value")
	from := entry.ArgForPrefixAsElement("from", "1")
	quantity := entry.Element("quantity")
	if quantity == nil {
		return script.InvalidArguments("must specify a quantity or 'stop' or 'next'")
	}
	debug.Report(entry, "repeat", "quantity="+quantity.String(), "from="+from.String(), "as="+asName.String())
	target, err := quantity.AsInt()
	if err != nil {
		return script.InvalidArguments("quantity '%s' is not a number", quantity.String())
	}
	if target <= 0 {
		debug.EchoDebug(entry, "zero count, not looping")
		return nil
	}
	start, err := from.AsInt()
	if err != nil {
		return script.InvalidArguments("'from' value '%s' is not a number", from.String())
	}
	braced := script.BracedCommands(entry)
	if len(braced) == 0 || len(braced[0].Entries) == 0 {
		debug.EchoError(entry, "empty subsection - did you forget a ':'?")
		return nil
	}
	data := &repeatData{
		index:     start,
		target:    start + target - 1,
		valueName: asName.String(),
	}
	entry.SetData(data)
	data.originalValue = q.DefinitionObject(data.valueName)
	q.AddDefinition(data.valueName, object.ElementFromInt(data.index))
	callback := script.NewEntry("repeat", []string{CallbackMarker}, entry.Script(), nil, entry.LineNumber())
	callback.Queue = q
	callback.SetOwner(entry)
	batch := script.CloneBracedEntries(braced[0].Entries)
	batch = append(batch, callback)
	for _, e := range batch {
		e.SetInstant(true)
	}
	entry.SetInstant(true)
	q.InjectAtStart(batch)
	return nil
}
