// Package schedule drives the engine heartbeat. One logical tick advances
// accumulated delta time, drains the cross-thread action channel and runs due
// schedulables. Background goroutines never touch queue or entry state
// directly: they hand a closure to OnTick and the heartbeat goroutine applies
// it.
package schedule

import (
	"sync"
	"sync/atomic"
)

// Schedulable is a unit of deferred work ticked once per heartbeat. Returning
// false removes it.
type Schedulable interface {
	Tick(deltaMillis int64) bool
}

// OneTime runs a function once after a delay in milliseconds (zero means the
// next tick).
type OneTime struct {
	RemainingMillis int64
	Run             func()
}

func (o *OneTime) Tick(deltaMillis int64) bool {
	o.RemainingMillis -= deltaMillis
	if o.RemainingMillis > 0 {
		return true
	}
	o.Run()
	return false
}

// Repeating runs a function every interval until Run returns false.
type Repeating struct {
	IntervalMillis int64
	Run            func() bool

	elapsed int64
}

func (r *Repeating) Tick(deltaMillis int64) bool {
	r.elapsed += deltaMillis
	if r.elapsed < r.IntervalMillis {
		return true
	}
	r.elapsed = 0
	return r.Run()
}

// Scheduler owns the heartbeat state. Tick must only ever be called from one
// goroutine; that goroutine is the single writer for everything the actions
// touch.
type Scheduler struct {
	mu           sync.Mutex
	actions      []func()
	schedulables []Schedulable
	deltaMillis  atomic.Int64
}

func New() *Scheduler {
	return &Scheduler{}
}

// OnTick marshals fn onto the heartbeat goroutine; it runs at the start of
// the next tick. This is the only legal route from a background worker back
// into queue or entry state.
func (s *Scheduler) OnTick(fn func()) {
	s.mu.Lock()
	s.actions = append(s.actions, fn)
	s.mu.Unlock()
}

// Async runs fn on a worker goroutine.
func (s *Scheduler) Async(fn func()) {
	go fn()
}

// Schedule registers a schedulable ticked every heartbeat until done.
func (s *Scheduler) Schedule(item Schedulable) {
	s.mu.Lock()
	s.schedulables = append(s.schedulables, item)
	s.mu.Unlock()
}

// DeltaMillis is the total delta time accumulated across all ticks; delay
// trackers compare against it.
func (s *Scheduler) DeltaMillis() int64 {
	return s.deltaMillis.Load()
}

// Tick advances the heartbeat by deltaMillis: handoff actions first, then
// schedulables.
func (s *Scheduler) Tick(deltaMillis int64) {
	s.deltaMillis.Add(deltaMillis)
	s.mu.Lock()
	actions := s.actions
	s.actions = nil
	items := s.schedulables
	s.schedulables = nil
	s.mu.Unlock()
	for _, fn := range actions {
		fn()
	}
	var keep []Schedulable
	for _, item := range items {
		if item.Tick(deltaMillis) {
			keep = append(keep, item)
		}
	}
	if len(keep) > 0 {
		s.mu.Lock()
		s.schedulables = append(keep, s.schedulables...)
		s.mu.Unlock()
	}
}
