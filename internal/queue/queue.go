// Package queue implements the execution queue scheduler: ordered command
// streams advanced one entry at a time under the cooperative heartbeat, with
// timed pacing, loop injection and asynchronous hold semantics.
package queue

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quill/internal/debug"
	"quill/internal/executor"
	"quill/internal/object"
	"quill/internal/script"
)

// State is the queue life cycle: idle until started, running between
// suspensions, stopped by a control command, finished when drained.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// ScriptQueue is an ordered stream of pending command entries with its own
// variable scope. All mutation happens on the heartbeat goroutine; the sole
// cross-thread boundary is an entry's finished flag, marshalled through the
// scheduler.
type ScriptQueue struct {
	name string

	entries           []*script.Entry
	definitions       map[string]object.Value
	held              map[string]*script.Entry
	determinations    *object.List
	lastEntryExecuted *script.Entry

	state      State
	procedural bool
	timed      bool
	delay      script.DelayTracker

	sched     script.Scheduler
	callbacks []func()
}

var (
	queuesMu sync.RWMutex
	queues   = make(map[string]*ScriptQueue)
)

// NewID derives a unique queue id from a base name.
func NewID(base string) string {
	return base + "_" + uuid.NewString()[:8]
}

// New creates a queue and tracks it until it stops or finishes. A name that
// is already tracked gets a fresh suffix rather than displacing the live
// queue.
func New(name string, sched script.Scheduler) *ScriptQueue {
	q := &ScriptQueue{
		name:           name,
		definitions:    make(map[string]object.Value),
		held:           make(map[string]*script.Entry),
		determinations: &object.List{},
		sched:          sched,
	}
	queuesMu.Lock()
	for _, taken := queues[q.name]; taken; _, taken = queues[q.name] {
		slog.Debug("queue name already tracked, generating another",
			slog.String("queue", q.name))
		q.name = name + "_" + uuid.NewString()[:8]
	}
	queues[q.name] = q
	queuesMu.Unlock()
	return q
}

// ByName finds a tracked queue.
func ByName(name string) (*ScriptQueue, bool) {
	queuesMu.RLock()
	defer queuesMu.RUnlock()
	q, ok := queues[name]
	return q, ok
}

// TickAll advances every running queue one heartbeat. Called by the engine
// after the scheduler's own tick.
func TickAll() {
	queuesMu.RLock()
	active := make([]*ScriptQueue, 0, len(queues))
	for _, q := range queues {
		active = append(active, q)
	}
	queuesMu.RUnlock()
	for _, q := range active {
		q.Tick()
	}
}

// ActiveCount reports how many queues are still tracked (monitoring surface).
func ActiveCount() int {
	queuesMu.RLock()
	defer queuesMu.RUnlock()
	return len(queues)
}

func untrack(q *ScriptQueue) {
	queuesMu.Lock()
	delete(queues, q.name)
	queuesMu.Unlock()
}

func (q *ScriptQueue) Name() string { return q.name }

func (q *ScriptQueue) State() State { return q.state }

func (q *ScriptQueue) Scheduler() script.Scheduler { return q.sched }

// SetProcedural restricts the queue to handlers marked safe for procedures.
func (q *ScriptQueue) SetProcedural(procedural bool) { q.procedural = procedural }

func (q *ScriptQueue) IsProcedural() bool { return q.procedural }

func (q *ScriptQueue) IsTimed() bool { return q.timed }

// SetTimed switches the queue to heartbeat-paced advancement before start.
func (q *ScriptQueue) SetTimed(timed bool) { q.timed = timed }

// ForceToTimed converts a running instant queue into a timed one, applying
// the given delay immediately.
func (q *ScriptQueue) ForceToTimed(t script.DelayTracker) {
	q.timed = true
	q.delay = t
}

// SetDelay pauses a timed queue until the tracker stops reporting delayed.
func (q *ScriptQueue) SetDelay(t script.DelayTracker) { q.delay = t }

// AddEntries appends entries to the end of the pending list.
func (q *ScriptQueue) AddEntries(entries []*script.Entry) {
	for _, e := range entries {
		e.Queue = q
	}
	q.entries = append(q.entries, entries...)
}

// InjectAtStart inserts a batch at the head of the pending list, preserving
// the batch's relative order. This is the sole mechanism control-flow
// constructs use to implement loops and conditionals.
func (q *ScriptQueue) InjectAtStart(entries []*script.Entry) {
	for _, e := range entries {
		e.Queue = q
	}
	q.entries = append(append(make([]*script.Entry, 0, len(entries)+len(q.entries)), entries...), q.entries...)
}

func (q *ScriptQueue) Size() int { return len(q.entries) }

func (q *ScriptQueue) EntryAt(i int) *script.Entry {
	if i < 0 || i >= len(q.entries) {
		return nil
	}
	return q.entries[i]
}

func (q *ScriptQueue) RemoveFirst() *script.Entry {
	if len(q.entries) == 0 {
		return nil
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

// Clear empties the pending list without changing state.
func (q *ScriptQueue) Clear() {
	q.entries = nil
}

// AddDefinition binds a queue-global variable. A nil value removes the
// binding; loop constructs use that to restore "no prior binding".
func (q *ScriptQueue) AddDefinition(name string, v object.Value) {
	key := strings.ToLower(name)
	if v == nil {
		delete(q.definitions, key)
		return
	}
	q.definitions[key] = v
}

func (q *ScriptQueue) DefinitionObject(name string) object.Value {
	return q.definitions[strings.ToLower(name)]
}

// AllDefinitions snapshots the queue's variable scope. Hosts carrying state
// across short-lived queues (the REPL) seed the next queue from it.
func (q *ScriptQueue) AllDefinitions() map[string]object.Value {
	out := make(map[string]object.Value, len(q.definitions))
	for k, v := range q.definitions {
		out[k] = v
	}
	return out
}

func (q *ScriptQueue) Definition(name string) string {
	if v := q.DefinitionObject(name); v != nil {
		return v.Identify()
	}
	return ""
}

// HoldEntry registers a completed entry under a save name for later
// "entry[name].field" lookups.
func (q *ScriptQueue) HoldEntry(saveName string, e *script.Entry) {
	q.held[strings.ToLower(saveName)] = e
}

// HeldEntry is the "wait for entry named X" read accessor used by downstream
// template resolution.
func (q *ScriptQueue) HeldEntry(saveName string) *script.Entry {
	return q.held[strings.ToLower(saveName)]
}

// HeldObject implements tag.Source.
func (q *ScriptQueue) HeldObject(saveName, key string) (object.Value, bool) {
	e := q.HeldEntry(saveName)
	if e == nil {
		return nil, false
	}
	v := e.Object(key)
	if v == nil {
		return nil, false
	}
	return v, true
}

// QueueName implements tag.Source.
func (q *ScriptQueue) QueueName() string { return q.name }

// QueueSize implements tag.Source.
func (q *ScriptQueue) QueueSize() int { return len(q.entries) }

// AddDetermination records an outcome value consumed by this queue's caller.
func (q *ScriptQueue) AddDetermination(v object.Value) {
	q.determinations.Add(v)
}

func (q *ScriptQueue) Determinations() *object.List {
	return q.determinations
}

// OnStop registers a callback run once when the queue stops or finishes.
func (q *ScriptQueue) OnStop(fn func()) {
	if q.state == StateStopped || q.state == StateFinished {
		fn()
		return
	}
	q.callbacks = append(q.callbacks, fn)
}

// Start begins execution. An instant queue drains as far as it can right
// away; a timed queue waits for its first heartbeat.
func (q *ScriptQueue) Start() {
	if q.state != StateIdle {
		return
	}
	q.state = StateRunning
	slog.Debug("queue starting",
		slog.String("queue", q.name),
		slog.Int("pending", len(q.entries)),
		slog.Bool("timed", q.timed))
	if !q.timed {
		q.revolve()
	}
}

// Stop is cooperative: it prevents further advancement but does not
// interrupt in-flight background work. "Stopped" is observable mid-iteration
// by control-flow walking the pending list; "finished" means drained.
func (q *ScriptQueue) Stop() {
	if q.state == StateStopped || q.state == StateFinished {
		return
	}
	q.state = StateStopped
	q.complete()
}

func (q *ScriptQueue) IsStopped() bool {
	return q.state == StateStopped || q.state == StateFinished
}

func (q *ScriptQueue) finish() {
	q.state = StateFinished
	q.complete()
}

func (q *ScriptQueue) complete() {
	slog.Debug("queue complete",
		slog.String("queue", q.name),
		slog.String("state", q.state.String()))
	untrack(q)
	callbacks := q.callbacks
	q.callbacks = nil
	for _, fn := range callbacks {
		fn()
	}
}

// Tick advances the queue one heartbeat: delay gating first, then
// advancement. Safe to call on any state; only running queues move.
func (q *ScriptQueue) Tick() {
	if q.state != StateRunning {
		return
	}
	if q.timed && q.delay != nil {
		if q.delay.IsDelayed() {
			return
		}
		q.delay = nil
	}
	q.revolve()
}

// revolve is the advancement rule: pop and execute the head entry while
// entries remain, the queue is running, and the last entry does not require
// waiting. A timed queue yields after one non-instant entry; an entry that
// failed stops this activation.
func (q *ScriptQueue) revolve() {
	if q.lastEntryExecuted != nil && q.lastEntryExecuted.ShouldWaitFor() {
		return
	}
	for len(q.entries) > 0 && q.state == StateRunning {
		if q.timed && q.delay != nil && q.delay.IsDelayed() {
			return
		}
		entry := q.entries[0]
		q.entries = q.entries[1:]
		entry.Queue = q
		q.lastEntryExecuted = entry
		if !executor.Execute(entry) {
			debug.EchoDebug(entry, "queue '%s' pausing advancement after failed entry", q.name)
			return
		}
		if entry.ShouldWaitFor() {
			return
		}
		if q.timed && !entry.IsInstant() {
			return
		}
	}
	if len(q.entries) == 0 && q.state == StateRunning {
		q.finish()
	}
}
