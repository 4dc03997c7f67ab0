package queue

import (
	"time"

	"quill/internal/script"
)

// SystemDelay gates on wall-clock time (monotonic).
type SystemDelay struct {
	End time.Time
}

func NewSystemDelay(millis int64) *SystemDelay {
	return &SystemDelay{End: time.Now().Add(time.Duration(millis) * time.Millisecond)}
}

func (d *SystemDelay) IsDelayed() bool {
	return time.Now().Before(d.End)
}

// DeltaDelay gates on the scheduler's accumulated delta time, so a lagging
// heartbeat stretches the wait with it.
type DeltaDelay struct {
	Sched     script.Scheduler
	EndMillis int64
}

func NewDeltaDelay(sched script.Scheduler, millis int64) *DeltaDelay {
	return &DeltaDelay{Sched: sched, EndMillis: sched.DeltaMillis() + millis}
}

func (d *DeltaDelay) IsDelayed() bool {
	return d.Sched.DeltaMillis() < d.EndMillis
}
