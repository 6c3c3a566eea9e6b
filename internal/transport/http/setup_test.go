package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"hauntedlights/internal/effects"
	"hauntedlights/internal/platform/config"
	"hauntedlights/internal/playback"
	"hauntedlights/internal/session"
	"hauntedlights/internal/tuya"
	derrors "hauntedlights/pkg/domain-errors"
)

// fakeVendor scripts the vendor client visible to handlers.
type fakeVendor struct {
	loginErr    error
	exchangeErr error
	token       tuya.Token
	devices     []tuya.Device
	listErr     error

	mu         sync.Mutex
	loginCalls int
	lastCode   string
}

func (f *fakeVendor) LoginPassword(ctx context.Context, username, password, countryCode, schema string) (tuya.Token, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	if f.loginErr != nil {
		return tuya.Token{}, f.loginErr
	}
	return f.token, nil
}

func (f *fakeVendor) AuthorizeURL(redirectURI, state string) string {
	return "https://vendor.example/login/authorize?redirect_uri=" + redirectURI + "&state=" + state
}

func (f *fakeVendor) ExchangeCode(ctx context.Context, code string) (tuya.Token, error) {
	f.mu.Lock()
	f.lastCode = code
	f.mu.Unlock()
	if f.exchangeErr != nil {
		return tuya.Token{}, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeVendor) ListDevices(ctx context.Context, token tuya.Token) ([]tuya.Device, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.devices, nil
}

// fakeDispatcher returns a scripted result without touching the network.
type fakeDispatcher struct {
	result effects.Result

	mu       sync.Mutex
	triggers []string
}

func (f *fakeDispatcher) Trigger(ctx context.Context, sess *session.Session, name string) (effects.Result, error) {
	if !effects.Known(name) {
		return effects.Result{}, derrors.New(derrors.CodeUnknownEffect, "unknown effect: "+name)
	}
	f.mu.Lock()
	f.triggers = append(f.triggers, name)
	f.mu.Unlock()
	res := f.result
	res.Effect = name
	return res, nil
}

// fakePlayback records lifecycle calls.
type fakePlayback struct {
	startErr error
	status   playback.Status

	mu      sync.Mutex
	started []string
	stopped []string
}

func (f *fakePlayback) Start(sess *session.Session) error {
	if len(sess.OnlineDevices()) == 0 {
		return derrors.New(derrors.CodeNoDevices, "no devices selected")
	}
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.started = append(f.started, sess.ID)
	f.mu.Unlock()
	return nil
}

func (f *fakePlayback) Stop(sessionID string) {
	f.mu.Lock()
	f.stopped = append(f.stopped, sessionID)
	f.mu.Unlock()
}

func (f *fakePlayback) Status(sessionID string) playback.Status {
	return f.status
}

type testEnv struct {
	router     http.Handler
	store      *session.MemoryStore
	codec      *session.CookieCodec
	vendor     *fakeVendor
	dispatcher *fakeDispatcher
	playback   *fakePlayback
}

func newTestEnv() *testEnv {
	cfg := config.Config{
		Environment:   "test",
		CountryCode:   "49",
		Schema:        "smartlife",
		AppURL:        "http://localhost:3001",
		SessionSecret: "test-secret",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		store:      session.NewMemoryStore(),
		codec:      session.NewCookieCodec(cfg.SessionSecret),
		vendor:     &fakeVendor{},
		dispatcher: &fakeDispatcher{},
		playback:   &fakePlayback{status: playback.Status{State: playback.StateIdle}},
	}
	h := NewHandler(cfg, logger, env.vendor, env.store, env.codec, env.dispatcher, env.playback)
	env.router = NewRouter(h)
	return env
}

// seedSession stores an authenticated session and returns its cookie.
func (e *testEnv) seedSession(devices ...tuya.Device) (*session.Session, *http.Cookie) {
	sess := &session.Session{
		ID:          "sess-1",
		UID:         "uid-1",
		AccessToken: "tok-1",
		Devices:     devices,
	}
	if err := e.store.Put(context.Background(), sess); err != nil {
		panic(err)
	}
	value, err := e.codec.IssueSession(sess.ID)
	if err != nil {
		panic(err)
	}
	return sess, &http.Cookie{Name: session.CookieName, Value: value}
}

var errVendorDown = errors.New("vendor down")
