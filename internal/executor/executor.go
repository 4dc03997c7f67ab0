// Package executor dispatches one command entry: meta-arguments first, then
// the handler's parse and execute steps, with every failure contained to the
// single entry.
package executor

import (
	"strings"

	"quill/internal/debug"
	"quill/internal/script"
)

// Execute runs one entry to completion or deliberate skip. It returns false
// on failure; the calling queue stops advancing for this activation but its
// state remains valid for inspection.
func Execute(entry *script.Entry) (ok bool) {
	cmd := entry.Command()
	meta := cmd.Meta()
	queue := entry.Queue
	if queue != nil && queue.IsProcedural() && !meta.Procedural {
		debug.EchoError(entry, "command '%s' is not accepted within a procedure; procedures may only process logic, not change the world", meta.Name)
		return false
	}
	// Taxonomy class 3: unexpected internal faults in a handler fail the one
	// entry, never the queue.
	defer func() {
		if r := recover(); r != nil {
			debug.EchoError(entry, "internal fault while executing command: %v (attempted: %s)", r, entry)
			entry.SetFinished(true)
			ok = false
		}
	}()
	saveName := ""
	ctx := entry.TagContext()
	for _, metaArg := range entry.MetaArgs() {
		switch metaArg.Prefix {
		case "if":
			resolved := strings.ToLower(metaArg.Value.Resolve(ctx).Identify())
			shouldRun := resolved == "true" || resolved == "!false"
			if !shouldRun {
				debug.EchoDebug(entry, "'if:' argument returned false, command won't run")
				entry.SetFinished(true)
				return true
			}
			debug.EchoDebug(entry, "'if:' argument passed, command will run")
		case "save":
			saveName = metaArg.Value.Resolve(ctx).Identify()
			debug.EchoDebug(entry, "remembering this entry as '%s'", saveName)
		}
	}
	if err := cmd.Parse(entry); err != nil {
		return reportFailure(entry, meta, err)
	}
	if err := cmd.Execute(entry); err != nil {
		return reportFailure(entry, meta, err)
	}
	if saveName != "" && queue != nil {
		queue.HoldEntry(saveName, entry)
	}
	return true
}

// reportFailure classifies a parse/execute error: argument-contract
// violations get the usage hint, anything else is logged with full context.
// Either way the entry is finished-with-failure and the queue survives.
func reportFailure(entry *script.Entry, meta *script.CommandMeta, err error) bool {
	if script.IsInvalidArguments(err) {
		debug.EchoError(entry, "invalid arguments were specified: %s", err.Error())
		debug.Log("usage: %s", meta.Usage())
		debug.Log("(attempted: %s)", entry)
	} else {
		debug.EchoError(entry, "command execution failed: %v (attempted: %s)", err, entry)
	}
	entry.SetFinished(true)
	return false
}
