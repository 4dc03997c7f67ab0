package commands

import (
	"io"
	"os"
	"path/filepath"

	"quill/internal/config"
	"quill/internal/debug"
	"quill/internal/object"
	"quill/internal/script"
)

// FileCopyCommand copies a file inside the data folder. The "success" entry
// slot reports the outcome so scripts can branch on it.
type FileCopyCommand struct{}

var fileCopyMeta = &script.CommandMeta{
	Name:            "filecopy",
	Syntax:          "filecopy [origin:<path>] [destination:<path>] (overwrite)",
	MinArgs:         2,
	MaxArgs:         3,
	Holdable:        true,
	PrefixesHandled: []string{"origin", "destination"},
	BooleansHandled: []string{"overwrite"},
}

func (c *FileCopyCommand) Meta() *script.CommandMeta { return fileCopyMeta }

func (c *FileCopyCommand) Parse(entry *script.Entry) error { return nil }

func (c *FileCopyCommand) Execute(entry *script.Entry) error {
	origin, err := entry.RequiredArgForPrefixAsElement("origin")
	if err != nil {
		return err
	}
	destination, err := entry.RequiredArgForPrefixAsElement("destination")
	if err != nil {
		return err
	}
	overwrite := entry.ArgAsBoolean("overwrite")
	debug.Report(entry, "filecopy", "origin="+origin.String(), "destination="+destination.String())
	fail := func(format string, a ...any) {
		debug.EchoError(entry, format, a...)
		entry.AddObject("success", object.ElementFromBool(false))
		entry.SetFinished(true)
	}
	if !config.Core.File.AllowCopy {
		fail("file copying is disabled in the configuration")
		return nil
	}
	from, err := resolveDataPath(origin.String())
	if err != nil {
		fail("file copy failed: %v", err)
		return nil
	}
	to, err := resolveDataPath(destination.String())
	if err != nil {
		fail("file copy failed: %v", err)
		return nil
	}
	if _, err := os.Stat(from); err != nil {
		fail("file copy failed, origin does not exist")
		return nil
	}
	if _, err := os.Stat(to); err == nil && !overwrite {
		fail("file copy ignored, destination exists and overwrite is not set")
		return nil
	}
	runHoldable(entry, func(complete func(apply func())) {
		err := copyFile(from, to)
		complete(func() {
			if err != nil {
				debug.EchoError(entry, "file copy failed: %v", err)
			}
			entry.AddObject("success", object.ElementFromBool(err == nil))
			entry.SetFinished(true)
		})
	})
	return nil
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}
