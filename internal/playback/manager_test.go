package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hauntedlights/internal/effects"
	"hauntedlights/internal/platform/metrics"
	"hauntedlights/internal/session"
	"hauntedlights/internal/tuya"
	derrors "hauntedlights/pkg/domain-errors"
)

type countingDispatcher struct {
	triggers atomic.Int64
}

func (d *countingDispatcher) Trigger(ctx context.Context, sess *session.Session, name string) (effects.Result, error) {
	d.triggers.Add(1)
	return effects.Result{Effect: name, DevicesTriggered: 1, TotalDevices: 1}, nil
}

func newTestManager(d Dispatcher) *Manager {
	m := NewManager(d, metrics.NewForTest(), testLogger())
	m.timeline = Timeline{
		Duration: 10 * time.Second,
		Entries:  []Entry{{Offset: 0, Effect: effects.Reset, Label: "start"}},
	}
	m.tick = 5 * time.Millisecond
	return m
}

func TestManager_StartRejectsSessionsWithoutOnlineDevices(t *testing.T) {
	mgr := newTestManager(&countingDispatcher{})

	sess := &session.Session{ID: "s1", Devices: []tuya.Device{{ID: "d1", Online: false}}}
	err := mgr.Start(sess)

	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeNoDevices))
	assert.Equal(t, StateIdle, mgr.Status("s1").State)
}

func TestManager_StartTwiceConflicts(t *testing.T) {
	dispatcher := &countingDispatcher{}
	mgr := newTestManager(dispatcher)
	sess := &session.Session{ID: "s1", Devices: []tuya.Device{{ID: "d1", Online: true}}}

	require.NoError(t, mgr.Start(sess))
	defer mgr.Stop("s1")

	err := mgr.Start(sess)
	require.Error(t, err)
	assert.True(t, derrors.HasCode(err, derrors.CodeConflict))
}

func TestManager_SessionsPlayIndependently(t *testing.T) {
	dispatcher := &countingDispatcher{}
	mgr := newTestManager(dispatcher)

	a := &session.Session{ID: "a", Devices: []tuya.Device{{ID: "d1", Online: true}}}
	b := &session.Session{ID: "b", Devices: []tuya.Device{{ID: "d2", Online: true}}}

	require.NoError(t, mgr.Start(a))
	require.NoError(t, mgr.Start(b))

	assert.Equal(t, StateRunning, mgr.Status("a").State)
	assert.Equal(t, StateRunning, mgr.Status("b").State)

	mgr.Stop("a")
	assert.Equal(t, StateIdle, mgr.Status("a").State)
	assert.Equal(t, StateRunning, mgr.Status("b").State)
	mgr.Stop("b")
}

func TestManager_UnknownSessionIsIdle(t *testing.T) {
	mgr := newTestManager(&countingDispatcher{})

	assert.Equal(t, StateIdle, mgr.Status("nope").State)
	mgr.Stop("nope")
}

func TestManager_RestartAfterStop(t *testing.T) {
	dispatcher := &countingDispatcher{}
	mgr := newTestManager(dispatcher)
	sess := &session.Session{ID: "s1", Devices: []tuya.Device{{ID: "d1", Online: true}}}

	require.NoError(t, mgr.Start(sess))
	mgr.Stop("s1")

	require.NoError(t, mgr.Start(sess), "a stopped session can start a fresh run")
	mgr.Stop("s1")
}
