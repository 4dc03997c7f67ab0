package engine_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/commands"
	"quill/internal/config"
	"quill/internal/engine"
	"quill/internal/queue"
	"quill/internal/script"
)

func newEngine(t *testing.T, scripts map[string]string) *engine.Engine {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	cfg := config.Default()
	cfg.ScriptsPath = dir
	cfg.TickMillis = 5
	eng := engine.New(cfg)
	script.ClearContainers()
	require.NoError(t, eng.LoadScripts())
	return eng
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	prev := commands.Output
	commands.Output = &out
	t.Cleanup(func() { commands.Output = prev })
	return &out
}

func tickUntilDone(t *testing.T, eng *engine.Engine, q *queue.ScriptQueue) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !q.IsStopped() {
		require.True(t, time.Now().Before(deadline), "queue did not complete")
		time.Sleep(time.Millisecond)
		eng.Tick(eng.Config().TickMillis)
	}
}

func TestRunTask(t *testing.T) {
	out := captureOutput(t)
	eng := newEngine(t, map[string]string{
		"hello.yml": `
hello:
  type: task
  script:
  - echo "hello <[1]>"
`,
	})

	q, err := eng.RunTask("hello", "world")
	require.NoError(t, err)
	tickUntilDone(t, eng, q)
	assert.Equal(t, "hello world\n", out.String())
}

func TestRunTaskUnknown(t *testing.T) {
	eng := newEngine(t, nil)
	_, err := eng.RunTask("no_such_task")
	require.Error(t, err)
	var unknown *engine.UnknownScriptError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_task", unknown.Name)
}

func TestRunTaskAcrossFiles(t *testing.T) {
	out := captureOutput(t)
	eng := newEngine(t, map[string]string{
		"parent.yml": `
parent:
  type: task
  script:
  - ~run helper save:h
  - echo "got <entry[h].determinations.first>"
`,
		"helper.yml": `
helper:
  type: task
  script:
  - determine payload
`,
	})

	q, err := eng.RunTask("parent")
	require.NoError(t, err)
	tickUntilDone(t, eng, q)
	assert.Equal(t, "got payload\n", out.String())
}

func TestReloadScripts(t *testing.T) {
	eng := newEngine(t, map[string]string{
		"a.yml": `
first:
  type: task
  script:
  - echo one
`,
	})
	_, ok := script.ContainerByName("first")
	require.True(t, ok)

	require.NoError(t, os.WriteFile(
		filepath.Join(eng.Config().ScriptsPath, "a.yml"),
		[]byte("second:\n  type: task\n  script:\n  - echo two\n"), 0o644))
	require.NoError(t, eng.ReloadScripts())

	if _, ok := script.ContainerByName("first"); ok {
		t.Fatalf("stale container survived the reload")
	}
	if _, ok := script.ContainerByName("second"); !ok {
		t.Fatalf("new container not registered by the reload")
	}
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	eng := newEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- eng.Run(ctx) }()
	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
