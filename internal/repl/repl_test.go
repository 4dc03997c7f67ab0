package repl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"quill/internal/commands"
	"quill/internal/config"
	"quill/internal/engine"
	"quill/internal/repl"
)

func runLines(t *testing.T, lines ...string) string {
	t.Helper()
	var echoed bytes.Buffer
	prev := commands.Output
	commands.Output = &echoed
	t.Cleanup(func() { commands.Output = prev })

	cfg := config.Default()
	cfg.TickMillis = 1
	eng := engine.New(cfg)

	var prompt bytes.Buffer
	repl.Start(eng, strings.NewReader(strings.Join(lines, "\n")), &prompt)
	return echoed.String()
}

func TestEchoLine(t *testing.T) {
	out := runLines(t, `echo "hello"`)
	assert.Equal(t, "hello\n", out)
}

func TestDefinitionsCarryAcrossLines(t *testing.T) {
	out := runLines(t,
		"define name shell",
		`echo "hi <[name]>"`,
	)
	assert.Equal(t, "hi shell\n", out)
}

func TestBlankLinesIgnored(t *testing.T) {
	out := runLines(t, "", "   ", "echo ok")
	assert.Equal(t, "ok\n", out)
}

func TestBadLineDoesNotEndSession(t *testing.T) {
	out := runLines(t,
		"no_such_command",
		"echo recovered",
	)
	assert.Equal(t, "recovered\n", out)
}
