// Package engine ties the pieces together: configuration, script loading,
// the heartbeat scheduler and queue advancement, behind one embeddable
// facade.
package engine

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"quill/internal/commands"
	"quill/internal/config"
	"quill/internal/object"
	"quill/internal/queue"
	"quill/internal/schedule"
	"quill/internal/script"
)

// Engine is one interpreter instance. Tick is the single-writer entry point
// for all script state; the host either calls it from its own loop or lets
// Run drive it on a wall-clock ticker.
type Engine struct {
	cfg   *config.Config
	sched *schedule.Scheduler
}

// New installs the configuration, registers the built-in commands and
// returns an engine ready to load scripts.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	config.Core = cfg
	commands.RegisterCore()
	return &Engine{
		cfg:   cfg,
		sched: schedule.New(),
	}
}

func (e *Engine) Config() *config.Config { return e.cfg }

func (e *Engine) Scheduler() *schedule.Scheduler { return e.sched }

// LoadScripts loads every script file under the configured scripts path.
func (e *Engine) LoadScripts() error {
	count, err := script.LoadDir(e.cfg.ScriptsPath)
	if err != nil {
		return err
	}
	slog.Info("scripts loaded",
		slog.String("path", e.cfg.ScriptsPath),
		slog.Int("containers", count))
	return nil
}

// ReloadScripts drops every registered container and loads fresh from disk.
// Running queues keep their already-built entries.
func (e *Engine) ReloadScripts() error {
	script.ClearContainers()
	return e.LoadScripts()
}

// RunTask starts a queue for a named task container. The variadic defs bind
// as numbered definitions, matching "run ... def:" semantics.
func (e *Engine) RunTask(name string, defs ...string) (*queue.ScriptQueue, error) {
	container, ok := script.ContainerByName(name)
	if !ok {
		return nil, &UnknownScriptError{Name: name}
	}
	q := queue.New(queue.NewID(container.Name), e.sched)
	q.SetTimed(true)
	for i, def := range defs {
		q.AddDefinition(strconv.Itoa(i+1), object.NewElement(def))
	}
	q.AddEntries(container.Entries())
	q.Start()
	return q, nil
}

// Tick advances the engine one heartbeat: scheduler handoff and schedulables
// first, then every running queue.
func (e *Engine) Tick(deltaMillis int64) {
	e.sched.Tick(deltaMillis)
	queue.TickAll()
}

// Run drives the heartbeat from a wall-clock ticker until the context is
// cancelled. Delta time is measured, not assumed, so a slow tick does not
// shorten script delays.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(e.cfg.TickMillis) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Tick(now.Sub(last).Milliseconds())
			last = now
		}
	}
}

// RunUntilIdle ticks the engine until no queues remain or the limit of ticks
// is reached. Intended for hosts running a batch of scripts to completion.
func (e *Engine) RunUntilIdle(maxTicks int) bool {
	for i := 0; i < maxTicks; i++ {
		if queue.ActiveCount() == 0 {
			return true
		}
		e.Tick(e.cfg.TickMillis)
		time.Sleep(time.Duration(e.cfg.TickMillis) * time.Millisecond)
	}
	return queue.ActiveCount() == 0
}

// UnknownScriptError reports a RunTask request for a container that is not
// registered.
type UnknownScriptError struct {
	Name string
}

func (e *UnknownScriptError) Error() string {
	return "unknown script '" + e.Name + "'"
}
