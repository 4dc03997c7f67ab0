package tag

import (
	"testing"

	"quill/internal/object"
)

// fakeSource backs placeholder resolution in tests.
type fakeSource struct {
	defs map[string]object.Value
	held map[string]map[string]object.Value
	name string
	size int
}

func (f *fakeSource) DefinitionObject(name string) object.Value {
	return f.defs[name]
}

func (f *fakeSource) HeldObject(saveName, key string) (object.Value, bool) {
	entry, ok := f.held[saveName]
	if !ok {
		return nil, false
	}
	v, ok := entry[key]
	return v, ok
}

func (f *fakeSource) QueueName() string { return f.name }

func (f *fakeSource) QueueSize() int { return f.size }

func ctxWith(src *fakeSource) *Context {
	return &Context{Src: src}
}

func TestCompileLiteral(t *testing.T) {
	c := Compile("plain text")
	if c.HasTag {
		t.Fatalf("literal text reported HasTag")
	}
	lit := c.KnownLiteral()
	if lit == nil {
		t.Fatalf("literal text has no known literal")
	}
	if lit.String() != "plain text" {
		t.Errorf("literal = %q, want %q", lit.String(), "plain text")
	}
	if !lit.IsRaw {
		t.Errorf("compile-time literal not marked raw")
	}
}

func TestCompileUnterminated(t *testing.T) {
	c := Compile("before <unclosed")
	if c.HasTag {
		t.Errorf("unterminated placeholder treated as a tag")
	}
	if c.KnownLiteral() == nil || c.KnownLiteral().String() != "before <unclosed" {
		t.Errorf("unterminated text not kept literal")
	}
}

func TestResolveDefinition(t *testing.T) {
	src := &fakeSource{defs: map[string]object.Value{"greeting": object.NewElement("hello")}}
	c := Compile("<[greeting]>")
	if !c.HasTag {
		t.Fatalf("placeholder not detected")
	}
	got := c.Resolve(ctxWith(src))
	if got.Identify() != "hello" {
		t.Errorf("resolved %q, want %q", got.Identify(), "hello")
	}
}

func TestResolveSinglePlaceholderKeepsType(t *testing.T) {
	list := object.ParseList("a|b")
	src := &fakeSource{defs: map[string]object.Value{"items": list}}
	got := Compile("<[items]>").Resolve(ctxWith(src))
	if _, ok := got.(*object.List); !ok {
		t.Fatalf("single placeholder lost the value type: got %T", got)
	}
}

func TestResolveMixedConcatenates(t *testing.T) {
	src := &fakeSource{defs: map[string]object.Value{"name": object.NewElement("world")}}
	got := Compile("hello <[name]>!").Resolve(ctxWith(src))
	if got.Identify() != "hello world!" {
		t.Errorf("resolved %q, want %q", got.Identify(), "hello world!")
	}
}

func TestResolveAttributeChain(t *testing.T) {
	src := &fakeSource{defs: map[string]object.Value{"items": object.ParseList("x|y|z")}}
	tests := []struct {
		input    string
		expected string
	}{
		{"<[items].size>", "3"},
		{"<[items].first>", "x"},
		{"<[items].get[2]>", "y"},
		{"<element[Hello].to_lowercase>", "hello"},
		{"<element[Hello].length>", "5"},
	}
	for _, tt := range tests {
		got := Compile(tt.input).Resolve(ctxWith(src))
		if got.Identify() != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got.Identify(), tt.expected)
		}
	}
}

func TestResolveQueueTags(t *testing.T) {
	src := &fakeSource{name: "q_1234", size: 7}
	tests := []struct {
		input    string
		expected string
	}{
		{"<queue>", "q_1234"},
		{"<queue.id>", "q_1234"},
		{"<queue.size>", "7"},
	}
	for _, tt := range tests {
		got := Compile(tt.input).Resolve(ctxWith(src))
		if got.Identify() != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got.Identify(), tt.expected)
		}
	}
}

func TestResolveHeldEntry(t *testing.T) {
	src := &fakeSource{held: map[string]map[string]object.Value{
		"req": {"data": object.NewBinary([]byte("body"))},
	}}
	got := Compile("<entry[req].data.utf8_decode>").Resolve(ctxWith(src))
	if got.Identify() != "body" {
		t.Errorf("resolved %q, want %q", got.Identify(), "body")
	}
}

func TestResolveUnknownKeepsRawText(t *testing.T) {
	src := &fakeSource{}
	tests := []string{
		"<[missing]>",
		"<entry[nothing].data>",
		"<bogus>",
		"<element[ok].no_such_attr>",
	}
	for _, input := range tests {
		got := Compile(input).Resolve(ctxWith(src))
		if got.Identify() != input {
			t.Errorf("Resolve(%q) = %q, want the raw text back", input, got.Identify())
		}
	}
}

func TestResolveEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<&dq>quoted<&dq>", `"quoted"`},
		{"a<&sp>b", "a b"},
		{"<&lt>tag<&gt>", "<tag>"},
		{"one<&pipe>two", "one|two"},
		{"<&co>", ":"},
		{"<&nl>", "\n"},
	}
	for _, tt := range tests {
		got := Compile(tt.input).Resolve(&Context{})
		if got.Identify() != tt.expected {
			t.Errorf("Resolve(%q) = %q, want %q", tt.input, got.Identify(), tt.expected)
		}
	}
}

func TestSplitAttributesBracketAware(t *testing.T) {
	steps := splitAttributes("[my.dotted.def].size")
	if len(steps) != 2 || steps[0] != "[my.dotted.def]" || steps[1] != "size" {
		t.Errorf("splitAttributes ignored brackets: %v", steps)
	}
}

func TestFindCloseBracketAware(t *testing.T) {
	// The '>' inside brackets must not close the placeholder.
	c := Compile("<element[a>b].length>")
	if !c.HasTag {
		t.Fatalf("bracketed '>' terminated the scan")
	}
	got := c.Resolve(&Context{})
	if got.Identify() != "3" {
		t.Errorf("resolved %q, want %q", got.Identify(), "3")
	}
}
