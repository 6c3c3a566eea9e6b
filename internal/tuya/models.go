package tuya

import "time"

// Credentials is one Tuya key/secret pair. Two pairs exist side by side: the
// cloud project pair signs device and session calls, the app pair signs only
// the OAuth code exchange.
type Credentials struct {
	ClientID string
	Secret   string
}

// Token is the result of a successful credential or code exchange.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UID          string    `json:"uid"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Device is a snapshot row from the vendor's device listing. It is refreshed
// wholesale on each discovery call, never kept live.
type Device struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"type"`
	Online   bool   `json:"online"`
}

// Command is a single code/value pair in a device command batch.
type Command struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}
