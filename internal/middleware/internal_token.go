package middleware

import (
	"crypto/subtle"
	"net/http"
)

const InternalTokenHeader = "X-Internal-Token"

// InternalToken guards processor callbacks. An empty token disables the
// check, which is how local setups without a shared secret run.
func InternalToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(InternalTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
