package effects

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"hauntedlights/internal/platform/metrics"
	"hauntedlights/internal/session"
	"hauntedlights/internal/tuya"
	derrors "hauntedlights/pkg/domain-errors"
)

const flickerPulses = 5

// Sender submits one command batch to one device. Satisfied by *tuya.Client.
type Sender interface {
	SendCommands(ctx context.Context, accessToken, deviceID string, commands []tuya.Command) error
}

// Result reports how a broadcast went. DevicesTriggered counts devices whose
// command call succeeded; TotalDevices counts the whole cached snapshot,
// offline devices included.
type Result struct {
	Effect           string
	DevicesTriggered int
	TotalDevices     int
}

// Dispatcher resolves effect names and fans command batches out to every
// online device of a session concurrently. Per-device failure is expected and
// only reduces the triggered count.
type Dispatcher struct {
	sender     Sender
	metrics    *metrics.Metrics
	logger     *slog.Logger
	pulseDelay time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPulseDelay overrides the flicker pulse spacing. Tests use this to keep
// the five-cycle sequence fast.
func WithPulseDelay(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.pulseDelay = d }
}

func NewDispatcher(sender Sender, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:     sender,
		metrics:    m,
		logger:     logger,
		pulseDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger broadcasts the named effect to every online device the session has
// cached. Unknown names fail before any network call. Re-invoking while a
// previous flicker is mid-flight is allowed and will interleave.
func (d *Dispatcher) Trigger(ctx context.Context, sess *session.Session, name string) (Result, error) {
	if !Known(name) {
		return Result{}, derrors.New(derrors.CodeUnknownEffect, "unknown effect: "+name)
	}

	total := len(sess.Devices)
	online := sess.OnlineDevices()
	d.metrics.EffectsTriggered.WithLabelValues(name).Inc()

	if name == Flicker {
		return d.flicker(ctx, sess.AccessToken, online, total)
	}

	cmds, _ := Commands(name)
	triggered := d.broadcast(ctx, sess.AccessToken, online, cmds)
	return Result{Effect: name, DevicesTriggered: triggered, TotalDevices: total}, nil
}

// flicker runs five sequential off/on pulse cycles. It reports success once
// the sequence completes; per-pulse failures are not aggregated.
func (d *Dispatcher) flicker(ctx context.Context, accessToken string, online []tuya.Device, total int) (Result, error) {
	off := []tuya.Command{{Code: "switch_led", Value: false}}
	on := []tuya.Command{{Code: "switch_led", Value: true}}

	for i := 0; i < flickerPulses; i++ {
		d.broadcast(ctx, accessToken, online, off)
		if err := sleep(ctx, d.pulseDelay); err != nil {
			return Result{}, err
		}
		d.broadcast(ctx, accessToken, online, on)
		if err := sleep(ctx, d.pulseDelay); err != nil {
			return Result{}, err
		}
	}
	return Result{Effect: Flicker, DevicesTriggered: len(online), TotalDevices: total}, nil
}

// broadcast issues one command batch per device concurrently and returns the
// success count. Each call carries its own timeout inside the sender, so a
// hung device delays only its own contribution.
func (d *Dispatcher) broadcast(ctx context.Context, accessToken string, devices []tuya.Device, cmds []tuya.Command) int {
	var succeeded atomic.Int64
	var g errgroup.Group
	for _, dev := range devices {
		dev := dev
		g.Go(func() error {
			if err := d.sender.SendCommands(ctx, accessToken, dev.ID, cmds); err != nil {
				d.metrics.DeviceCommands.WithLabelValues("failure").Inc()
				d.logger.WarnContext(ctx, "device command failed",
					"device_id", dev.ID,
					"error", err,
				)
				return nil
			}
			d.metrics.DeviceCommands.WithLabelValues("success").Inc()
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(succeeded.Load())
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
