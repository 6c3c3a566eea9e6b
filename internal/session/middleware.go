package session

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKeySession struct{}

// ContextKeySession is exported for use in handlers.
var ContextKeySession = contextKeySession{}

// FromContext retrieves the authenticated session from the request context.
func FromContext(ctx context.Context) *Session {
	sess, ok := ctx.Value(ContextKeySession).(*Session)
	if !ok {
		return nil
	}
	return sess
}

// Require rejects requests that do not carry a valid session cookie and loads
// the session into the request context for downstream handlers.
func Require(store Store, codec *CookieCodec, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				unauthorized(w, "Not authenticated. Please login first.")
				return
			}

			id, err := codec.ParseSession(cookie.Value)
			if err != nil {
				logger.WarnContext(r.Context(), "rejecting invalid session cookie", "error", err)
				unauthorized(w, "Not authenticated. Please login first.")
				return
			}

			sess, err := store.Get(r.Context(), id)
			if err != nil {
				unauthorized(w, "Not authenticated. Please login first.")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"` + message + `"}`))
}
