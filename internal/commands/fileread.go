package commands

import (
	"os"

	"quill/internal/config"
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// FileReadCommand reads a file into the entry's "data" slot. Usually waited
// for ("~fileread"): the read runs on a worker goroutine and the result is
// marshalled back through the heartbeat before the entry finishes.
type FileReadCommand struct{}

var fileReadMeta = &script.CommandMeta{
	Name:            "fileread",
	Syntax:          "fileread [path:<path>]",
	MinArgs:         1,
	MaxArgs:         1,
	Holdable:        true,
	PrefixesHandled: []string{"path"},
}

func (c *FileReadCommand) Meta() *script.CommandMeta { return fileReadMeta }

func (c *FileReadCommand) Parse(entry *script.Entry) error { return nil }

func (c *FileReadCommand) Execute(entry *script.Entry) error {
	path, err := entry.RequiredArgForPrefixAsElement("path")
	if err != nil {
		return err
	}
	debug.Report(entry, "fileread", "path="+path.String())
	if !config.Core.File.AllowRead {
		debug.EchoError(entry, "file reading is disabled in the configuration")
		entry.SetFinished(true)
		return nil
	}
	full, err := resolveDataPath(path.String())
	if err != nil {
		debug.EchoError(entry, "file read failed: %v", err)
		entry.SetFinished(true)
		return nil
	}
	if _, err := os.Stat(full); err != nil {
		debug.EchoError(entry, "file read failed, file does not exist")
		entry.SetFinished(true)
		return nil
	}
	runHoldable(entry, func(complete func(apply func())) {
		data, err := os.ReadFile(full)
		complete(func() {
			if err != nil {
				debug.EchoError(entry, "file read failed: %v", err)
			} else {
				entry.AddObject("data", object.NewBinary(data))
			}
			entry.SetFinished(true)
		})
	})
	return nil
}

// runHoldable executes work on a worker goroutine; the completion closure
// that touches entry state is marshalled back to the heartbeat via the
// scheduler handoff. Whether the queue suspends for the result is the wait
// sigil's decision alone: a non-waited entry still does its I/O off the
// heartbeat, the queue just advances without it.
func runHoldable(entry *script.Entry, work func(complete func(apply func()))) {
	if entry.Queue != nil {
		sched := entry.Queue.Scheduler()
		sched.Async(func() {
			work(func(apply func()) {
				sched.OnTick(apply)
			})
		})
		return
	}
	work(func(apply func()) {
		apply()
	})
}
