package middleware

import (
	"context"
	"net/http"
	"strings"
)

const (
	SessionCookie = "sessionId"
	SessionHeader = "X-Session-ID"

	sessionKey contextKey = "session_id"
)

// Session copies the client session id (cookie first, then header) into
// the request context. Requests without one pass through untouched; the
// handlers decide whether it is required.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sid := SessionID(r); sid != "" {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, sid))
		}
		next.ServeHTTP(w, r)
	})
}

// SessionID reads the client session id from the request.
func SessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.Header.Get(SessionHeader))
}

func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey).(string); ok {
		return v
	}
	return ""
}
