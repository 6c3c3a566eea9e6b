package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName carries the signed session reference in the browser.
	CookieName = "hl_session"
	// StateCookieName carries the OAuth CSRF nonce across the vendor redirect.
	StateCookieName = "hl_oauth_state"

	cookieTTL = 24 * time.Hour
	stateTTL  = 10 * time.Minute
)

// CookieCodec signs and verifies the tokens this service hands to browsers:
// the session cookie and the OAuth state parameter. Both are HS256 JWTs keyed
// by the session secret.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

// IssueSession signs a cookie value referencing the given session ID.
func (c *CookieCodec) IssueSession(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(cookieTTL).Unix(),
	})
	return token.SignedString(c.secret)
}

// ParseSession verifies a cookie value and returns the session ID it names.
func (c *CookieCodec) ParseSession(value string) (string, error) {
	return c.parse(value, "sid")
}

// IssueState signs an OAuth state token around a fresh nonce. The same nonce
// is set as a short-lived cookie; the callback requires both to match.
func (c *CookieCodec) IssueState(nonce string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"nonce": nonce,
		"iat":   now.Unix(),
		"exp":   now.Add(stateTTL).Unix(),
	})
	return token.SignedString(c.secret)
}

// ParseState verifies a state token and returns its nonce.
func (c *CookieCodec) ParseState(value string) (string, error) {
	return c.parse(value, "nonce")
}

func (c *CookieCodec) parse(value, claim string) (string, error) {
	token, err := jwt.Parse(value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	v, ok := claims[claim].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing %s claim", claim)
	}
	return v, nil
}
