// Package repl is the interactive shell: one command line per prompt,
// executed on a short-lived queue whose variable scope carries forward to
// the next line.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"quill/internal/engine"
	"quill/internal/object"
	"quill/internal/queue"
	"quill/internal/script"
)

const PROMPT = ">> "

// Start reads command lines until EOF. Each line becomes an instant queue
// seeded with the definitions accumulated so far; waited-for commands tick
// the engine until the queue completes.
func Start(eng *engine.Engine, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	container := &script.Container{Name: "repl", Type: "task", Debug: true}
	definitions := map[string]object.Value{}

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		args := script.BuildArgs(line)
		if len(args) == 0 {
			continue
		}

		entry := script.NewEntry(args[0], args[1:], container, nil, 0)
		q := queue.New(queue.NewID("repl"), eng.Scheduler())
		for name, value := range definitions {
			q.AddDefinition(name, value)
		}
		q.AddEntries([]*script.Entry{entry})
		q.Start()
		drain(eng, q)
		definitions = q.AllDefinitions()
	}
}

// drain ticks the heartbeat until the queue stops or finishes, so waited-for
// background work completes before the next prompt.
func drain(eng *engine.Engine, q *queue.ScriptQueue) {
	interval := eng.Config().TickMillis
	for !q.IsStopped() {
		time.Sleep(time.Duration(interval) * time.Millisecond)
		eng.Tick(interval)
	}
}
