package playback

import (
	"sync"
	"time"
)

// StepScheduler drives the render loop. The player owns when the loop runs;
// the scheduler only owns the cadence.
type StepScheduler interface {
	// Start begins invoking step repeatedly until Stop. Calling Start while
	// running is a no-op.
	Start(step func())
	Stop()
	Running() bool
}

// TickerScheduler steps on a fixed wall-clock interval from its own
// goroutine. Stop does not wait for an in-flight step; callers that need
// post-stop quiescence gate the step body themselves.
type TickerScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	stop     chan struct{}
}

// NewTickerScheduler creates a stopped scheduler with the given interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{interval: interval}
}

func (s *TickerScheduler) Start(step func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				step()
			}
		}
	}()
}

func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

func (s *TickerScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// ManualScheduler steps only when told to, for tests.
type ManualScheduler struct {
	mu      sync.Mutex
	step    func()
	running bool
}

func (s *ManualScheduler) Start(step func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.step = step
	s.running = true
}

func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.step = nil
}

func (s *ManualScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Tick fires one step if the scheduler is running.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	step := s.step
	s.mu.Unlock()
	if step != nil {
		step()
	}
}
