package script

import (
	"strings"

	"quill/internal/debug"
	"quill/internal/object"
)

// Argument is one resolved piece of a command line as seen by a handler's
// Parse step: an optional prefix plus a typed value.
type Argument struct {
	PrefixName string
	RawValue   string

	object object.Value
	entry  *Entry
}

func newArgument(prefix, value string) *Argument {
	return &Argument{PrefixName: prefix, RawValue: value}
}

func (a *Argument) HasPrefix() bool {
	return a.PrefixName != ""
}

// MatchesPrefix reports whether the argument's prefix matches any of the
// given names, case-insensitively.
func (a *Argument) MatchesPrefix(names ...string) bool {
	if a.PrefixName == "" {
		return false
	}
	for _, n := range names {
		if strings.EqualFold(a.PrefixName, n) {
			return true
		}
	}
	return false
}

// Matches reports whether the resolved value equals the given raw word.
func (a *Argument) Matches(values ...string) bool {
	v := a.Value()
	for _, want := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// Value returns the resolved value text.
func (a *Argument) Value() string {
	if a.object != nil {
		return a.object.Identify()
	}
	return a.RawValue
}

// Object returns the resolved typed value.
func (a *Argument) Object() object.Value {
	if a.object != nil {
		return a.object
	}
	return object.NewElement(a.RawValue)
}

// AsElement returns the argument as a scalar element, prefix-tagged.
func (a *Argument) AsElement() *object.Element {
	if el, ok := a.object.(*object.Element); ok {
		el.SetPrefix(a.PrefixName)
		return el
	}
	el := object.NewElement(a.Value())
	el.SetPrefix(a.PrefixName)
	return el
}

// FullValue reassembles a prefixed argument into its original "name:value"
// form with the value resolved. Commands taking free-form positional input
// (URLs, connection strings) read this so a colon in the text is not
// mistaken for a prefix.
func (a *Argument) FullValue() string {
	if a.PrefixName != "" {
		return a.PrefixName + ":" + a.Value()
	}
	return a.Value()
}

// MatchesInteger reports whether the resolved value parses as an integer.
func (a *Argument) MatchesInteger() bool {
	return a.AsElement().IsInt()
}

func (a *Argument) MatchesBoolean() bool {
	return a.AsElement().IsBoolean()
}

// ReportUnhandled logs an argument the handler did not recognize. Unhandled
// arguments are reported, not fatal: the command still runs with what it
// understood.
func (a *Argument) ReportUnhandled() {
	debug.EchoError(a.entry, "ignoring unrecognized argument: %s", a.RawValue)
}

func (a *Argument) String() string {
	if a.PrefixName != "" {
		return a.PrefixName + ":" + a.RawValue
	}
	return a.RawValue
}
