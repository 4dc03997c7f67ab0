// Package tag compiles argument text containing <...> placeholders into a
// lazily-resolvable form. Compilation happens once per command entry;
// resolution happens on every execution because placeholders may read
// mutable run-time state (queue definitions, held entry results).
package tag

import (
	"strings"

	"quill/internal/debug"
	"quill/internal/object"
)

// Source is the run-time state a placeholder may read. The owning queue
// implements this.
type Source interface {
	DefinitionObject(name string) object.Value
	HeldObject(saveName string, key string) (object.Value, bool)
	QueueName() string
	QueueSize() int
}

// Context carries the state placeholders resolve against.
type Context struct {
	Src Source
}

const (
	partLiteral = iota
	partPlaceholder
)

type part struct {
	kind int
	text string // placeholder body, without the angle brackets
}

// Compiled is a pre-scanned argument text. When HasTag is false the text
// degenerates to a known concrete literal at compile time.
type Compiled struct {
	Raw    string
	HasTag bool

	literal *object.Element
	parts   []part
}

// Compile scans text for placeholders. It never fails: unterminated syntax is
// kept as literal text.
func Compile(text string) *Compiled {
	c := &Compiled{Raw: text}
	rest := text
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		end := findClose(rest, open+1)
		if end < 0 {
			break
		}
		if open > 0 {
			c.parts = append(c.parts, part{partLiteral, rest[:open]})
		}
		c.parts = append(c.parts, part{partPlaceholder, rest[open+1 : end]})
		c.HasTag = true
		rest = rest[end+1:]
	}
	if !c.HasTag {
		c.literal = object.RawElement(text)
		c.parts = nil
		return c
	}
	if rest != "" {
		c.parts = append(c.parts, part{partLiteral, rest})
	}
	return c
}

// findClose locates the '>' matching an opened placeholder, ignoring any
// inside square brackets.
func findClose(text string, from int) int {
	depth := 0
	for i := from; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// KnownLiteral returns the concrete value this text compiles to, or nil when
// resolution depends on run-time state.
func (c *Compiled) KnownLiteral() *object.Element {
	return c.literal
}

// Resolve fills in placeholders against ctx. A text that is exactly one
// placeholder keeps the resolved value's type; mixed text concatenates.
func (c *Compiled) Resolve(ctx *Context) object.Value {
	if c.literal != nil {
		return c.literal
	}
	if len(c.parts) == 1 && c.parts[0].kind == partPlaceholder {
		return resolvePlaceholder(c.parts[0].text, ctx)
	}
	var sb strings.Builder
	for _, p := range c.parts {
		if p.kind == partLiteral {
			sb.WriteString(p.text)
			continue
		}
		sb.WriteString(resolvePlaceholder(p.text, ctx).Identify())
	}
	return object.NewElement(sb.String())
}

var escapes = map[string]string{
	"&dq":   "\"",
	"&sq":   "'",
	"&sp":   " ",
	"&nl":   "\n",
	"&lt":   "<",
	"&gt":   ">",
	"&amp":  "&",
	"&pipe": "|",
	"&co":   ":",
}

func resolvePlaceholder(body string, ctx *Context) object.Value {
	if esc, ok := escapes[body]; ok {
		return object.NewElement(esc)
	}
	steps := splitAttributes(body)
	base, rest, ok := resolveBase(steps, ctx)
	if !ok {
		debug.Error("unable to resolve tag <%s>", body)
		return object.NewElement("<" + body + ">")
	}
	for _, step := range rest {
		next, ok := base.Attribute(step)
		if !ok {
			debug.Error("unknown attribute '%s' in tag <%s>", step, body)
			return object.NewElement("<" + body + ">")
		}
		base = next
	}
	return base
}

func resolveBase(steps []string, ctx *Context) (object.Value, []string, bool) {
	if len(steps) == 0 {
		return nil, nil, false
	}
	head := steps[0]
	switch {
	case strings.HasPrefix(head, "[") && strings.HasSuffix(head, "]"):
		if ctx == nil || ctx.Src == nil {
			return nil, nil, false
		}
		def := ctx.Src.DefinitionObject(head[1 : len(head)-1])
		if def == nil {
			return nil, nil, false
		}
		return def, steps[1:], true
	case strings.HasPrefix(head, "entry[") && strings.HasSuffix(head, "]"):
		if ctx == nil || ctx.Src == nil || len(steps) < 2 {
			return nil, nil, false
		}
		saveName := head[6 : len(head)-1]
		held, ok := ctx.Src.HeldObject(saveName, steps[1])
		if !ok {
			return nil, nil, false
		}
		return held, steps[2:], true
	case strings.HasPrefix(head, "element[") && strings.HasSuffix(head, "]"):
		return object.NewElement(head[8 : len(head)-1]), steps[1:], true
	case head == "queue":
		if ctx == nil || ctx.Src == nil {
			return nil, nil, false
		}
		if len(steps) >= 2 {
			switch steps[1] {
			case "id":
				return object.NewElement(ctx.Src.QueueName()), steps[2:], true
			case "size":
				return object.ElementFromInt(int64(ctx.Src.QueueSize())), steps[2:], true
			}
		}
		return object.NewElement(ctx.Src.QueueName()), steps[1:], true
	}
	return nil, nil, false
}

// splitAttributes splits a placeholder body on dots outside square brackets.
func splitAttributes(body string) []string {
	var steps []string
	depth := 0
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				steps = append(steps, body[start:i])
				start = i + 1
			}
		}
	}
	steps = append(steps, body[start:])
	return steps
}
