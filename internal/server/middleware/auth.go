package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/service"
)

// Cookie names carrying the token pair.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type contextKeyAuth string

// IdentityKey is the context key for the verified caller.
const IdentityKey contextKeyAuth = "auth_identity"

// Authenticate returns an HTTP middleware that runs the gate on the request's
// access token. The token is read from the accessToken cookie first and the
// Authorization bearer header second. In detached mode principals without an
// organization are let through.
//
// On success the Identity is attached to the request context. On failure the
// gate's error is written with its mapped status.
func Authenticate(gate *service.Gate, detached bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := gate.Verify(r.Context(), AccessToken(r), detached)
			if err != nil {
				if apperr.Status(err) >= http.StatusInternalServerError {
					apperr.Log(RequestLogger(r.Context(), logger), "authentication failed", err)
				}
				writeAuthError(w, apperr.Status(err), apperr.Message(err))
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns an HTTP middleware that lets through only callers
// holding one of roles. It must be used after Authenticate.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFrom(r.Context())
			if id == nil || !id.Role.In(roles...) {
				writeAuthError(w, http.StatusForbidden, apperr.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom extracts the verified caller from the context. Returns nil on
// unauthenticated routes.
func IdentityFrom(ctx context.Context) *service.Identity {
	if id, ok := ctx.Value(IdentityKey).(*service.Identity); ok {
		return id
	}
	return nil
}

// AccessToken returns the access token presented with r, or "".
func AccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Response{Message: message, Success: false})
}
