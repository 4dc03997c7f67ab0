package script

import (
	"strings"

	"quill/internal/debug"
)

// BracedData is one nested command block owned by a control-flow entry: the
// block's label arguments plus its preprocessed entries.
type BracedData struct {
	Name    string
	Args    []string
	Entries []*Entry
}

// BracedCommands resolves the entry's nested blocks, preferring a structured
// sub-block over inline brace tokens. The result is cached on the shared
// internal shape: the block entries are templates that control-flow clones
// per iteration.
func BracedCommands(e *Entry) []BracedData {
	in := e.Internal
	if in.bracedSet != nil {
		return in.bracedSet
	}
	if len(in.inside) > 0 {
		in.bracedSet = []BracedData{{
			Name:    in.command,
			Entries: BuildEntries(in.script, in.inside),
		}}
		return in.bracedSet
	}
	if !in.hasBraces {
		return nil
	}
	in.bracedSet = parseBracedArgs(e)
	return in.bracedSet
}

// parseBracedArgs handles the inline "cmd { - sub args - sub args }" form.
func parseBracedArgs(e *Entry) []BracedData {
	in := e.Internal
	var set []BracedData
	var label []string
	depth := 0
	var blockTokens []string
	for _, arg := range in.preTaggedArgs {
		switch {
		case arg == "{":
			depth++
			if depth == 1 {
				blockTokens = nil
				continue
			}
			blockTokens = append(blockTokens, arg)
		case arg == "}":
			depth--
			if depth == 0 {
				set = append(set, BracedData{
					Name:    strings.Join(label, " "),
					Args:    label,
					Entries: entriesFromTokens(e, blockTokens),
				})
				label = nil
				continue
			}
			blockTokens = append(blockTokens, arg)
		case depth > 0:
			blockTokens = append(blockTokens, arg)
		default:
			label = append(label, arg)
		}
	}
	if depth != 0 {
		debug.EchoError(e, "unbalanced braces in command '%s'", in.command)
	}
	return set
}

// entriesFromTokens splits brace-block tokens into command lines at "-"
// markers and preprocesses each.
func entriesFromTokens(e *Entry, tokens []string) []*Entry {
	var entries []*Entry
	var current []string
	depth := 0
	flush := func() {
		if len(current) == 0 {
			return
		}
		entries = append(entries, NewEntry(current[0], current[1:], e.Internal.script, nil, e.Internal.lineNumber))
		current = nil
	}
	for _, tok := range tokens {
		switch {
		case tok == "{":
			depth++
			current = append(current, tok)
		case tok == "}":
			depth--
			current = append(current, tok)
		case tok == "-" && depth == 0:
			flush()
		default:
			current = append(current, tok)
		}
	}
	flush()
	return entries
}

// CloneBracedEntries duplicates a block body for one loop iteration: fresh
// object stores, fresh execution contexts, same preprocessed shape.
func CloneBracedEntries(entries []*Entry) []*Entry {
	clones := make([]*Entry, 0, len(entries))
	for _, entry := range entries {
		clones = append(clones, entry.Clone())
	}
	return clones
}
