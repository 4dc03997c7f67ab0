package script

import "testing"

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"define name value", []string{"define", "name", "value"}},
		{`echo "hello world"`, []string{"echo", "hello world"}},
		{`echo 'single quoted'`, []string{"echo", "single quoted"}},
		{"spaced   out\targs", []string{"spaced", "out", "args"}},
		{`mix pre:"a b" tail`, []string{"mix", "pre:a b", "tail"}},
		{"", nil},
		{"   ", nil},
	}
	for _, tt := range tests {
		got := BuildArgs(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("BuildArgs(%q) = %v, want %v", tt.input, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("BuildArgs(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
			}
		}
	}
}

const sampleScript = `
my_task:
  type: task
  script:
  - define greeting hello
  - repeat 3 as:i:
    - echo "<[greeting]> <[i]>"
  - echo done

quiet_task:
  type: task
  debug: false
  script:
  - echo quiet
`

func TestLoadBytes(t *testing.T) {
	containers, err := LoadBytes("sample.yml", []byte(sampleScript))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if len(containers) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(containers))
	}

	task := containers[0]
	if task.Name != "my_task" || task.Type != "task" {
		t.Errorf("container = %s/%s", task.Name, task.Type)
	}
	if !task.Debug {
		t.Errorf("debug should default to true")
	}
	if len(task.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(task.Lines))
	}
	if task.Lines[0].Text != "define greeting hello" {
		t.Errorf("line 0 = %q", task.Lines[0].Text)
	}
	nested := task.Lines[1]
	if nested.Text != "repeat 3 as:i" {
		t.Errorf("nested line text = %q", nested.Text)
	}
	if len(nested.Inside) != 1 || nested.Inside[0].Text != `echo "<[greeting]> <[i]>"` {
		t.Errorf("nested block = %+v", nested.Inside)
	}
	if nested.LineNumber == 0 {
		t.Errorf("nested line lost its source line number")
	}

	quiet := containers[1]
	if quiet.Debug {
		t.Errorf("debug: false not honored")
	}
}

func TestLoadBytesMalformedContainerSkipped(t *testing.T) {
	src := `
bad_container: just a scalar
good_container:
  type: task
  script:
  - echo ok
`
	containers, err := LoadBytes("mixed.yml", []byte(src))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if len(containers) != 1 || containers[0].Name != "good_container" {
		t.Fatalf("malformed container not skipped cleanly: %+v", containers)
	}
}

func TestLoadBytesInvalidYAML(t *testing.T) {
	if _, err := LoadBytes("broken.yml", []byte("a: [unclosed")); err == nil {
		t.Errorf("invalid yaml did not error")
	}
}

func TestContainerRegistry(t *testing.T) {
	RegisterContainer(&Container{Name: "Registry_Test"})
	if _, ok := ContainerByName("registry_test"); !ok {
		t.Errorf("case-insensitive lookup failed")
	}
	if _, ok := ContainerByName("REGISTRY_TEST"); !ok {
		t.Errorf("upper-case lookup failed")
	}
}

func TestContainerEntriesSkipBlankLines(t *testing.T) {
	c := &Container{
		Name: "blanky",
		Lines: []Line{
			{Text: "fake one"},
			{Text: "   "},
			{Text: "fake two"},
		},
	}
	entries := c.Entries()
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}
