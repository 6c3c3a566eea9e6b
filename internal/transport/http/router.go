// Package httptransport is the thin HTTP layer. It delegates to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hauntedlights/internal/effects"
	"hauntedlights/internal/platform/config"
	"hauntedlights/internal/platform/middleware"
	"hauntedlights/internal/playback"
	"hauntedlights/internal/session"
	"hauntedlights/internal/tuya"
)

// VendorClient is the slice of the Tuya client the handlers consume.
type VendorClient interface {
	LoginPassword(ctx context.Context, username, password, countryCode, schema string) (tuya.Token, error)
	AuthorizeURL(redirectURI, state string) string
	ExchangeCode(ctx context.Context, code string) (tuya.Token, error)
	ListDevices(ctx context.Context, token tuya.Token) ([]tuya.Device, error)
}

// EffectDispatcher triggers one named effect against a session's devices.
type EffectDispatcher interface {
	Trigger(ctx context.Context, sess *session.Session, name string) (effects.Result, error)
}

// PlaybackManager drives per-session timeline runs.
type PlaybackManager interface {
	Start(sess *session.Session) error
	Stop(sessionID string)
	Status(sessionID string) playback.Status
}

// Handler carries the wired dependencies for all public endpoints.
type Handler struct {
	cfg        config.Config
	logger     *slog.Logger
	vendor     VendorClient
	sessions   session.Store
	codec      *session.CookieCodec
	dispatcher EffectDispatcher
	playback   PlaybackManager
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	vendor VendorClient,
	sessions session.Store,
	codec *session.CookieCodec,
	dispatcher EffectDispatcher,
	playbackMgr PlaybackManager,
) *Handler {
	return &Handler{
		cfg:        cfg,
		logger:     logger,
		vendor:     vendor,
		sessions:   sessions,
		codec:      codec,
		dispatcher: dispatcher,
		playback:   playbackMgr,
	}
}

// NewRouter wires all public endpoints behind the platform middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.handleHealth)

	r.Post("/api/login", h.handleLogin)
	r.Get("/api/smart-life-auth", h.handleSmartLifeAuth)
	r.Get("/api/auth-callback", h.handleAuthCallback)

	r.Group(func(pr chi.Router) {
		pr.Use(session.Require(h.sessions, h.codec, h.logger))
		pr.Post("/api/discover", h.handleDiscover)
		pr.Post("/api/trigger", h.handleTrigger)
		pr.Post("/api/playback/start", h.handlePlaybackStart)
		pr.Post("/api/playback/stop", h.handlePlaybackStop)
		pr.Get("/api/playback/status", h.handlePlaybackStatus)
	})

	return r
}
