// Package debounce runs a task after a quiet period, cancelling any
// pending task when a new one is scheduled.
package debounce

import (
	"sync"
	"time"
)

type Scheduler struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

func New(delay time.Duration) *Scheduler {
	return &Scheduler{delay: delay}
}

// Schedule arms fn to run after the quiet period. A pending task that
// has not fired yet is cancelled first, so only the latest fn runs.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, fn)
}

// Cancel drops the pending task, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
