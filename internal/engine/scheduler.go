package engine

import (
	"log"
	"sync"
	"time"
)

// job is one scheduled task. next returns the delay before the following
// run, which lets randomized-interval jobs re-roll their period each tick.
type job struct {
	name string
	next func() time.Duration
	fn   func()
}

// Scheduler owns the engine's recurring timers as explicit, cancelable
// tasks. All jobs are torn down together when the engine stops.
type Scheduler struct {
	mu        sync.Mutex
	jobs      []*job
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{stopCh: make(chan struct{})}
}

// Every registers a fixed-interval job.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{
		name: name,
		next: func() time.Duration { return interval },
		fn:   fn,
	})
}

// EveryFunc registers a job whose interval is recomputed before every
// run, for randomized periods.
func (s *Scheduler) EveryFunc(name string, next func() time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, &job{name: name, next: next, fn: fn})
}

// Start launches every registered job. Safe to call once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	jobs := s.jobs
	s.mu.Unlock()

	for _, j := range jobs {
		go s.run(j)
	}
	log.Printf("[Scheduler] Started %d jobs", len(jobs))
}

// run is one job's loop.
func (s *Scheduler) run(j *job) {
	timer := time.NewTimer(j.next())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			j.fn()
			timer.Reset(j.next())
		case <-s.stopCh:
			return
		}
	}
}

// Stop cancels every job. Idempotent.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.stopCh)
		s.isRunning = false
		log.Printf("[Scheduler] Stopped")
	})
}
