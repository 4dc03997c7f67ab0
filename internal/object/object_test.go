package object

import "testing"

func TestElementAsBoolean(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"false", false},
		{"yes", false},
		{"1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := NewElement(tt.input).AsBoolean(); got != tt.expected {
			t.Errorf("AsBoolean(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestElementAsInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"5", 5, false},
		{"-3", -3, false},
		{"4.9", 4, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := NewElement(tt.input).AsInt()
		if tt.wantErr {
			if err == nil {
				t.Errorf("AsInt(%q) expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("AsInt(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("AsInt(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestElementAttributes(t *testing.T) {
	tests := []struct {
		value    string
		attr     string
		expected string
	}{
		{"Hello", "to_lowercase", "hello"},
		{"Hello", "to_uppercase", "HELLO"},
		{"Hello", "length", "5"},
		{"true", "is_boolean", "true"},
		{"maybe", "is_boolean", "false"},
		{"3.5", "to_number", "3.5"},
		{"3.5", "is_number", "true"},
		{"x", "is_number", "false"},
	}
	for _, tt := range tests {
		got, ok := NewElement(tt.value).Attribute(tt.attr)
		if !ok {
			t.Errorf("Attribute(%q, %q) not resolved", tt.value, tt.attr)
			continue
		}
		if got.Identify() != tt.expected {
			t.Errorf("Attribute(%q, %q) = %q, want %q", tt.value, tt.attr, got.Identify(), tt.expected)
		}
	}
}

func TestElementUnknownAttribute(t *testing.T) {
	if _, ok := NewElement("x").Attribute("no_such_attr"); ok {
		t.Errorf("unknown attribute resolved")
	}
}

func TestParseList(t *testing.T) {
	l := ParseList("a|b|c")
	if len(l.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(l.Items))
	}
	if l.Identify() != "a|b|c" {
		t.Errorf("Identify() = %q, want %q", l.Identify(), "a|b|c")
	}
	empty := ParseList("")
	if len(empty.Items) != 0 {
		t.Errorf("empty text produced %d items", len(empty.Items))
	}
}

func TestListAttributes(t *testing.T) {
	l := ParseList("one|two|three")
	tests := []struct {
		attr     string
		expected string
	}{
		{"size", "3"},
		{"is_empty", "false"},
		{"first", "one"},
		{"last", "three"},
		{"get[2]", "two"},
	}
	for _, tt := range tests {
		got, ok := l.Attribute(tt.attr)
		if !ok {
			t.Errorf("Attribute(%q) not resolved", tt.attr)
			continue
		}
		if got.Identify() != tt.expected {
			t.Errorf("Attribute(%q) = %q, want %q", tt.attr, got.Identify(), tt.expected)
		}
	}
	if _, ok := l.Attribute("get[0]"); ok {
		t.Errorf("get[0] resolved; indexes are 1-based")
	}
	if _, ok := l.Attribute("get[4]"); ok {
		t.Errorf("get[4] resolved past the end")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"5", 5, false},
		{"5s", 5, false},
		{"0.5", 0.5, false},
		{"2m", 120, false},
		{"1h", 3600, false},
		{"1d", 86400, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got.Seconds != tt.expected {
			t.Errorf("ParseDuration(%q) = %v seconds, want %v", tt.input, got.Seconds, tt.expected)
		}
	}
}

func TestDurationMillis(t *testing.T) {
	d := NewDuration(1.5)
	if d.Millis() != 1500 {
		t.Errorf("Millis() = %d, want 1500", d.Millis())
	}
}

func TestBinaryAttributes(t *testing.T) {
	b := NewBinary([]byte("hi"))
	tests := []struct {
		attr     string
		expected string
	}{
		{"length", "2"},
		{"utf8_decode", "hi"},
		{"to_hex", "6869"},
		{"to_base64", "aGk="},
	}
	for _, tt := range tests {
		got, ok := b.Attribute(tt.attr)
		if !ok {
			t.Errorf("Attribute(%q) not resolved", tt.attr)
			continue
		}
		if got.Identify() != tt.expected {
			t.Errorf("Attribute(%q) = %q, want %q", tt.attr, got.Identify(), tt.expected)
		}
	}
}

func TestPrefixRoundTrip(t *testing.T) {
	e := NewElement("v")
	e.SetPrefix("name")
	if e.Prefix() != "name" {
		t.Errorf("Prefix() = %q, want %q", e.Prefix(), "name")
	}
}
