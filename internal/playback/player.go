package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hauntedlights/internal/effects"
)

// State of a player. A run moves Idle -> Running -> Idle, either by reaching
// the end of the timeline or by a manual stop.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// TriggerFunc fires one effect. Calls are made asynchronously from ticks;
// failures are logged and never block the clock.
type TriggerFunc func(ctx context.Context, effect string) error

// triggerTimeout bounds one async effect call. Generous because a flicker
// sequence alone takes a full second.
const triggerTimeout = 30 * time.Second

// Player walks the timeline on a single periodic tick. One player drives at
// most one run at a time; triggers spawned from ticks are fire-and-forget and
// their mutual completion order is not relied upon.
type Player struct {
	timeline Timeline
	tick     time.Duration
	trigger  TriggerFunc
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	clock     time.Duration
	lastFired time.Duration
	lastLabel string
	stop      chan struct{}
}

// Status is the poll view of a run.
type Status struct {
	State      State         `json:"state"`
	Position   time.Duration `json:"position"`
	LastEffect string        `json:"lastEffect,omitempty"`
}

func NewPlayer(timeline Timeline, tick time.Duration, trigger TriggerFunc, logger *slog.Logger) *Player {
	return &Player{
		timeline: timeline,
		tick:     tick,
		trigger:  trigger,
		logger:   logger,
		state:    StateIdle,
	}
}

// Start resets the virtual clock and enters Running. It fails if a run is
// already in progress.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateRunning {
		return ErrAlreadyRunning
	}
	p.state = StateRunning
	p.clock = 0
	p.lastFired = -1
	p.lastLabel = ""
	p.stop = make(chan struct{})
	go p.run(p.stop)
	return nil
}

// Stop ends the run immediately and issues a final reset. Stopping an idle
// player is a no-op. In-flight effect calls are not aborted.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	p.state = StateIdle
	close(p.stop)
	p.mu.Unlock()

	p.fire(Entry{Effect: effects.Reset, Label: "Stopped"})
}

// Status reports the current state and clock position.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{State: p.state, Position: p.clock, LastEffect: p.lastLabel}
}

func (p *Player) run(stop chan struct{}) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if done := p.advance(); done {
				p.fire(Entry{Effect: effects.Reset, Label: "End of timeline"})
				return
			}
		}
	}
}

// advance moves the virtual clock one tick and fires at most one due entry.
// It reports true when the clock has reached the timeline duration.
func (p *Player) advance() bool {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return true
	}
	p.clock += p.tick
	entry, due := p.timeline.next(p.clock, p.lastFired)
	if due {
		p.lastFired = entry.Offset
		p.lastLabel = entry.Label
	}
	finished := p.clock >= p.timeline.Duration
	if finished {
		p.state = StateIdle
	}
	p.mu.Unlock()

	if due {
		go p.fire(entry)
	}
	return finished
}

// fire issues one effect call on a fresh context. Stopping playback does not
// cancel calls already in flight, so the player's own lifecycle never leaks
// into the HTTP timeout.
func (p *Player) fire(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
	defer cancel()

	if err := p.trigger(ctx, entry.Effect); err != nil {
		p.logger.Warn("timeline trigger failed",
			"effect", entry.Effect,
			"label", entry.Label,
			"error", err,
		)
		return
	}
	p.logger.Info("timeline trigger fired",
		"effect", entry.Effect,
		"label", entry.Label,
	)
}
