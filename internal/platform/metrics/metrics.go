package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EffectsTriggered *prometheus.CounterVec
	DeviceCommands   *prometheus.CounterVec
	PlaybackRuns     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EffectsTriggered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hauntedlights_effects_triggered_total",
			Help: "Total number of effect triggers, by effect name",
		}, []string{"effect"}),
		DeviceCommands: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hauntedlights_device_commands_total",
			Help: "Total number of per-device command submissions, by outcome",
		}, []string{"outcome"}),
		PlaybackRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hauntedlights_playback_runs_total",
			Help: "Total number of timeline playback runs started",
		}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// collide on the default registerer.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		EffectsTriggered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hauntedlights_effects_triggered_total",
			Help: "Total number of effect triggers, by effect name",
		}, []string{"effect"}),
		DeviceCommands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hauntedlights_device_commands_total",
			Help: "Total number of per-device command submissions, by outcome",
		}, []string{"outcome"}),
		PlaybackRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "hauntedlights_playback_runs_total",
			Help: "Total number of timeline playback runs started",
		}),
	}
}
