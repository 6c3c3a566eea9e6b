// Package session holds the server-side record linking a browser session to
// vendor tokens and the cached device snapshot.
package session

import (
	"context"
	"time"

	"hauntedlights/internal/tuya"
)

// Session is created fresh on every successful authentication. Devices is the
// snapshot cached by the last discovery call.
type Session struct {
	ID           string        `json:"id"`
	UID          string        `json:"uid"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Devices      []tuya.Device `json:"devices,omitempty"`
}

// Token returns the vendor token view of the session for client calls.
func (s *Session) Token() tuya.Token {
	return tuya.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UID:          s.UID,
		ExpiresAt:    s.ExpiresAt,
	}
}

// OnlineDevices returns the cached devices currently reported online.
func (s *Session) OnlineDevices() []tuya.Device {
	online := make([]tuya.Device, 0, len(s.Devices))
	for _, d := range s.Devices {
		if d.Online {
			online = append(online, d)
		}
	}
	return online
}

// Store abstracts session persistence so the in-memory default can be swapped
// for a shared backend. Concurrent writes to the same session are
// last-write-wins; callers must not rely on stronger guarantees.
type Store interface {
	Put(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
