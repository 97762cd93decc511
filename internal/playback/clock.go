package playback

import (
	"sync"
	"time"
)

// Clock is the master playhead. The renderer never advances time itself; it
// only asks the clock where the playhead is, so audio-backed and synthetic
// clocks are interchangeable.
type Clock interface {
	// Position reports the playhead in seconds from the start of the track.
	Position() float64
	// Ended reports whether the playhead has reached the end of the track.
	Ended() bool
	Play()
	Pause()
	Reset()
}

// TrackClock is a pausable monotonic clock over a fixed-duration track. It
// stands in for the audio element's own position during preview.
type TrackClock struct {
	mu        sync.Mutex
	duration  float64
	base      float64
	running   bool
	startedAt time.Time
}

// NewTrackClock creates a paused clock at position zero.
func NewTrackClock(duration float64) *TrackClock {
	return &TrackClock{duration: duration}
}

func (c *TrackClock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *TrackClock) position() float64 {
	pos := c.base
	if c.running {
		pos += time.Since(c.startedAt).Seconds()
	}
	if pos > c.duration {
		pos = c.duration
	}
	return pos
}

func (c *TrackClock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position() >= c.duration
}

func (c *TrackClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.startedAt = time.Now()
}

func (c *TrackClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.base = c.position()
	c.running = false
}

func (c *TrackClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = 0
	c.running = false
}

// ManualClock is a hand-stepped clock for tests.
type ManualClock struct {
	mu       sync.Mutex
	pos      float64
	duration float64
	running  bool
}

// NewManualClock creates a paused manual clock.
func NewManualClock(duration float64) *ManualClock {
	return &ManualClock{duration: duration}
}

// Advance moves the playhead forward by d seconds.
func (c *ManualClock) Advance(d float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos += d
	if c.pos > c.duration {
		c.pos = c.duration
	}
}

func (c *ManualClock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *ManualClock) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos >= c.duration
}

func (c *ManualClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
}

func (c *ManualClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = 0
	c.running = false
}
