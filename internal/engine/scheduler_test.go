package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsJobs(t *testing.T) {
	s := NewScheduler()
	var ticks int64
	s.Every("tick", 20*time.Millisecond, func() {
		atomic.AddInt64(&ticks, 1)
	})
	s.Start()

	time.Sleep(110 * time.Millisecond)
	s.Stop()

	got := atomic.LoadInt64(&ticks)
	if got < 2 {
		t.Fatalf("job ran %d times in 110ms at 20ms interval, want >= 2", got)
	}

	// No further ticks after Stop.
	after := atomic.LoadInt64(&ticks)
	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt64(&ticks) != after {
		t.Error("job ticked after Stop()")
	}
}

func TestSchedulerEveryFunc(t *testing.T) {
	s := NewScheduler()
	var ticks int64
	var intervals int64
	s.EveryFunc("variable", func() time.Duration {
		atomic.AddInt64(&intervals, 1)
		return 15 * time.Millisecond
	}, func() {
		atomic.AddInt64(&ticks, 1)
	})
	s.Start()

	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if got := atomic.LoadInt64(&ticks); got < 2 {
		t.Fatalf("job ran %d times, want >= 2", got)
	}
	// The interval function is re-evaluated for each tick.
	if atomic.LoadInt64(&intervals) < atomic.LoadInt64(&ticks) {
		t.Errorf("interval func called %d times for %d ticks", intervals, ticks)
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler()
	s.Every("noop", time.Hour, func() {})
	s.Start()
	s.Stop()
	s.Stop()
}
