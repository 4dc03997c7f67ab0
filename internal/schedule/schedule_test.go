package schedule

import "testing"

func TestOneTime(t *testing.T) {
	ran := 0
	s := New()
	s.Schedule(&OneTime{RemainingMillis: 100, Run: func() { ran++ }})

	s.Tick(50)
	if ran != 0 {
		t.Fatalf("fired early")
	}
	s.Tick(50)
	if ran != 1 {
		t.Fatalf("did not fire when due: ran=%d", ran)
	}
	s.Tick(50)
	if ran != 1 {
		t.Fatalf("fired again after completion: ran=%d", ran)
	}
}

func TestOneTimeZeroDelayRunsNextTick(t *testing.T) {
	ran := false
	s := New()
	s.Schedule(&OneTime{Run: func() { ran = true }})
	s.Tick(1)
	if !ran {
		t.Fatalf("zero-delay item did not run on the next tick")
	}
}

func TestRepeating(t *testing.T) {
	runs := 0
	s := New()
	s.Schedule(&Repeating{IntervalMillis: 100, Run: func() bool {
		runs++
		return runs < 3
	}})

	for i := 0; i < 10; i++ {
		s.Tick(50)
	}
	if runs != 3 {
		t.Fatalf("expected 3 runs, got %d", runs)
	}
}

func TestOnTickRunsOnce(t *testing.T) {
	s := New()
	ran := 0
	s.OnTick(func() { ran++ })
	s.Tick(1)
	s.Tick(1)
	if ran != 1 {
		t.Fatalf("handoff action ran %d times", ran)
	}
}

func TestOnTickBeforeSchedulables(t *testing.T) {
	s := New()
	var order []string
	s.Schedule(&OneTime{Run: func() { order = append(order, "schedulable") }})
	s.OnTick(func() { order = append(order, "action") })
	s.Tick(1)
	if len(order) != 2 || order[0] != "action" || order[1] != "schedulable" {
		t.Fatalf("tick order = %v", order)
	}
}

func TestDeltaMillisAccumulates(t *testing.T) {
	s := New()
	s.Tick(30)
	s.Tick(20)
	if s.DeltaMillis() != 50 {
		t.Fatalf("DeltaMillis() = %d, want 50", s.DeltaMillis())
	}
}
