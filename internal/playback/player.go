package playback

import (
	"sync"

	"github.com/rs/zerolog"
)

// State is the player's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// RenderFunc draws the frame for one playhead position.
type RenderFunc func(ts float64)

// Player owns the preview transport: it couples the master clock to the
// step scheduler and renders one frame per step while playing. Timestamps
// handed to the render callback are non-decreasing within a playback run,
// and no frame is rendered after Pause or Stop returns.
type Player struct {
	mu        sync.Mutex
	logger    zerolog.Logger
	clock     Clock
	scheduler StepScheduler
	render    RenderFunc
	state     State
}

// NewPlayer creates an idle player.
func NewPlayer(logger zerolog.Logger, clock Clock, scheduler StepScheduler, render RenderFunc) *Player {
	return &Player{
		logger:    logger.With().Str("component", "playback").Logger(),
		clock:     clock,
		scheduler: scheduler,
		render:    render,
		state:     StateIdle,
	}
}

// State reports the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position reports the current playhead in seconds.
func (p *Player) Position() float64 {
	return p.clock.Position()
}

// Play starts or resumes playback. Playing from idle starts at zero.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StatePlaying {
		return
	}
	if p.state == StateIdle {
		p.clock.Reset()
	}
	p.state = StatePlaying
	p.clock.Play()
	p.scheduler.Start(p.tick)
	p.logger.Debug().Msg("playback started")
}

// Pause freezes the playhead in place. The step loop halts; Play restarts
// it from the frozen position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying {
		return
	}
	p.state = StatePaused
	p.clock.Pause()
	p.scheduler.Stop()
	p.logger.Debug().Float64("position", p.clock.Position()).Msg("playback paused")
}

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.state == StateIdle {
		return
	}
	p.state = StateIdle
	p.clock.Pause()
	p.clock.Reset()
	p.scheduler.Stop()
	p.logger.Debug().Msg("playback stopped")
}

// tick renders one frame at the current playhead. A step that lands after
// Pause or Stop finds the state changed and draws nothing. The state check
// and the render share the mutex so a concurrent Pause cannot interleave.
func (p *Player) tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying {
		return
	}

	p.render(p.clock.Position())

	if p.clock.Ended() {
		p.stopLocked()
	}
}
