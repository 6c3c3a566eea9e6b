package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"hauntedlights/internal/effects"
	"hauntedlights/internal/platform/metrics"
	"hauntedlights/internal/session"
	derrors "hauntedlights/pkg/domain-errors"
)

// ErrAlreadyRunning is returned when a run is started over a live one.
var ErrAlreadyRunning = errors.New("playback already running")

// Dispatcher triggers one named effect for a session. Satisfied by
// *effects.Dispatcher.
type Dispatcher interface {
	Trigger(ctx context.Context, sess *session.Session, name string) (effects.Result, error)
}

// Manager owns at most one Player per session. Different sessions play back
// independently; starting a second run for the same session is rejected.
type Manager struct {
	dispatcher Dispatcher
	timeline   Timeline
	tick       time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu      sync.Mutex
	players map[string]*Player
}

func NewManager(dispatcher Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Manager {
	return &Manager{
		dispatcher: dispatcher,
		timeline:   Schedule,
		tick:       100 * time.Millisecond,
		metrics:    m,
		logger:     logger,
		players:    make(map[string]*Player),
	}
}

// Start begins a playback run for the session. It rejects sessions with no
// online devices before touching any timer. Each run binds the device
// snapshot the session carried when it started.
func (m *Manager) Start(sess *session.Session) error {
	if len(sess.OnlineDevices()) == 0 {
		return derrors.New(derrors.CodeNoDevices, "no devices selected")
	}

	m.mu.Lock()
	if p := m.players[sess.ID]; p != nil && p.Status().State == StateRunning {
		m.mu.Unlock()
		return derrors.New(derrors.CodeConflict, "playback already running")
	}
	trigger := func(ctx context.Context, effect string) error {
		_, err := m.dispatcher.Trigger(ctx, sess, effect)
		return err
	}
	player := NewPlayer(m.timeline, m.tick, trigger, m.logger)
	m.players[sess.ID] = player
	m.mu.Unlock()

	if err := player.Start(); err != nil {
		return derrors.Wrap(err, derrors.CodeConflict, "playback already running")
	}
	m.metrics.PlaybackRuns.Inc()
	m.logger.Info("playback started", "session_id", sess.ID)
	return nil
}

// Stop ends the session's run, if any, and fires the final reset.
func (m *Manager) Stop(sessionID string) {
	m.mu.Lock()
	player := m.players[sessionID]
	m.mu.Unlock()
	if player == nil {
		return
	}
	player.Stop()
	m.logger.Info("playback stopped", "session_id", sessionID)
}

// Status reports the session's run state; an unknown session is simply idle.
func (m *Manager) Status(sessionID string) Status {
	m.mu.Lock()
	player := m.players[sessionID]
	m.mu.Unlock()
	if player == nil {
		return Status{State: StateIdle}
	}
	return player.Status()
}
