package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"hauntedlights/internal/effects"
	"hauntedlights/internal/platform/config"
	"hauntedlights/internal/platform/httpserver"
	"hauntedlights/internal/platform/logger"
	"hauntedlights/internal/platform/metrics"
	platformredis "hauntedlights/internal/platform/redis"
	"hauntedlights/internal/playback"
	"hauntedlights/internal/session"
	httptransport "hauntedlights/internal/transport/http"
	"hauntedlights/internal/tuya"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment)

	client := tuya.NewClient(
		cfg.TuyaBaseURL,
		tuya.Credentials{ClientID: cfg.CloudClientID, Secret: cfg.CloudSecret},
		tuya.Credentials{ClientID: cfg.AppClientID, Secret: cfg.AppSecret},
		log,
	)

	var sessions session.Store = session.NewMemoryStore()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient.Client)
		log.Info("using redis session store")
	}

	m := metrics.New()
	codec := session.NewCookieCodec(cfg.SessionSecret)
	dispatcher := effects.NewDispatcher(client, m, log)
	playbackMgr := playback.NewManager(dispatcher, m, log)

	handler := httptransport.NewHandler(cfg, log, client, sessions, codec, dispatcher, playbackMgr)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting hauntedlights", "addr", cfg.Addr, "environment", cfg.Environment)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
