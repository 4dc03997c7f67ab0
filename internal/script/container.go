package script

import "strings"

// Line is one raw script line plus any nested sub-block it owns.
type Line struct {
	Text       string
	LineNumber int
	Inside     []Line
}

// Container is one loaded script: a named list of command lines. It is the
// owning script reference entries carry for diagnostics.
type Container struct {
	Name     string
	Type     string
	Debug    bool
	FileName string
	Lines    []Line
}

// Entries preprocesses the container's body into command entries. Malformed
// lines still produce entries (reporting stubs), so one bad line never aborts
// the rest of the script.
func (c *Container) Entries() []*Entry {
	return BuildEntries(c, c.Lines)
}

// BuildEntries converts raw lines into entries against a container.
func BuildEntries(container *Container, lines []Line) []*Entry {
	entries := make([]*Entry, 0, len(lines))
	for _, line := range lines {
		args := BuildArgs(line.Text)
		if len(args) == 0 {
			continue
		}
		entries = append(entries, NewEntry(args[0], args[1:], container, line.Inside, line.LineNumber))
	}
	return entries
}

// BuildArgs splits a command line into whitespace-delimited arguments,
// honoring double and single quotes.
func BuildArgs(text string) []string {
	var args []string
	var current strings.Builder
	var quote byte
	flush := func() {
		if current.Len() > 0 {
			args = append(args, current.String())
			current.Reset()
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ' ' || c == '\t':
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return args
}
