package handler

import (
	"net/http"
	"time"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/server/middleware"
)

// setTokenCookies stores the pair in HttpOnly, same-site cookies.
func setTokenCookies(w http.ResponseWriter, pair model.TokenPair, secure bool) {
	http.SetCookie(w, tokenCookie(middleware.AccessTokenCookie, pair.AccessToken, secure))
	http.SetCookie(w, tokenCookie(middleware.RefreshTokenCookie, pair.RefreshToken, secure))
}

// clearTokenCookies expires both token cookies.
func clearTokenCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{middleware.AccessTokenCookie, middleware.RefreshTokenCookie} {
		c := tokenCookie(name, "", secure)
		c.Expires = time.Unix(0, 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func tokenCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}
