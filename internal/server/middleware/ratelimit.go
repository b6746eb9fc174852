package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

const msgTooManyAttempts = "Too many attempts. Please try again later."

// RateLimit returns an HTTP middleware that limits requests per client IP
// to the specified number per minute. A non-positive limit disables it.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeAuthError(w, http.StatusTooManyRequests, msgTooManyAttempts)
		}),
	)
}
