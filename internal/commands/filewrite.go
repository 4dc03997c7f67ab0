package commands

import (
	"os"
	"path/filepath"

	"quill/internal/config"
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// FileWriteCommand writes data to a file at the given path, creating parent
// directories as needed.
type FileWriteCommand struct{}

var fileWriteMeta = &script.CommandMeta{
	Name:            "filewrite",
	Syntax:          "filewrite [path:<path>] [data:<data>]",
	MinArgs:         2,
	MaxArgs:         2,
	Holdable:        true,
	PrefixesHandled: []string{"path", "data"},
}

func (c *FileWriteCommand) Meta() *script.CommandMeta { return fileWriteMeta }

func (c *FileWriteCommand) Parse(entry *script.Entry) error { return nil }

func (c *FileWriteCommand) Execute(entry *script.Entry) error {
	path, err := entry.RequiredArgForPrefixAsElement("path")
	if err != nil {
		return err
	}
	dataArg := entry.ArgForPrefix("data")
	if dataArg == nil {
		return script.InvalidArguments("must specify input to 'data' argument")
	}
	var payload []byte
	if bin, ok := dataArg.Object().(*object.Binary); ok {
		payload = bin.Data
	} else {
		payload = []byte(dataArg.Value())
	}
	debug.Report(entry, "filewrite", "path="+path.String())
	if !config.Core.File.AllowWrite {
		debug.EchoError(entry, "file writing is disabled in the configuration")
		entry.SetFinished(true)
		return nil
	}
	full, err := resolveDataPath(path.String())
	if err != nil {
		debug.EchoError(entry, "file write failed: %v", err)
		entry.SetFinished(true)
		return nil
	}
	runHoldable(entry, func(complete func(apply func())) {
		err := os.MkdirAll(filepath.Dir(full), 0o755)
		if err == nil {
			err = os.WriteFile(full, payload, 0o644)
		}
		complete(func() {
			if err != nil {
				debug.EchoError(entry, "file write failed: %v", err)
			}
			entry.SetFinished(true)
		})
	})
	return nil
}
