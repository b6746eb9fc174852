package handler

import (
	"log/slog"
	"net/http"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/server/middleware"
	"github.com/staffhub/staffhub/internal/service"
)

const msgTokenRefreshed = "Access token refreshed."

// AuthHandler serves the login, verification, reset, refresh, and logout
// flows for one principal kind.
type AuthHandler struct {
	kind          model.Kind
	auth          *service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates an AuthHandler for principals of kind.
func NewAuthHandler(kind model.Kind, auth *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		kind:          kind,
		auth:          auth,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the password and mails an OTP. No cookie is set.
// POST /api/v1/auth/{kind}/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ack, err := h.auth.Login(r.Context(), h.kind, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP completes the login and sets the token cookies.
// POST /api/v1/auth/{kind}/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	sess, err := h.auth.VerifyOTP(r.Context(), h.kind, req.Email, req.OTP)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setTokenCookies(w, sess.Tokens, h.secureCookies)
	writeOK(w, http.StatusOK, service.MsgOTPVerified, map[string]interface{}{"user": sess.Profile})
}

type forgotRequest struct {
	Email string `json:"email"`
}

// ForgotPassword mails a reset OTP.
// POST /api/v1/auth/{kind}/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ack, err := h.auth.ForgotPassword(r.Context(), h.kind, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

type resetRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

// UpdateForgotPassword sets a new password with the reset OTP.
// PATCH /api/v1/auth/{kind}/update-forgot-password
func (h *AuthHandler) UpdateForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.auth.ResetForgottenPassword(r.Context(), h.kind, req.Email, req.OTP, req.Password); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgPasswordUpdated, nil)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates the token pair. The refresh token is read from its
// cookie, or from the body for clients without cookies.
// POST /api/v1/auth/{kind}/refresh-token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(r, &req, true); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	token := req.RefreshToken
	if c, err := r.Cookie(middleware.RefreshTokenCookie); err == nil && c.Value != "" {
		token = c.Value
	}
	pair, err := h.auth.Refresh(r.Context(), h.kind, token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	setTokenCookies(w, pair, h.secureCookies)
	writeOK(w, http.StatusOK, msgTokenRefreshed, pair)
}

// Logout forgets the stored refresh token and expires the cookies.
// POST /api/v1/auth/{kind}/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), identity(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	clearTokenCookies(w, h.secureCookies)
	msg := "User is logged out."
	if h.kind == model.KindAdmin {
		msg = "Super admin is logged out."
	}
	writeOK(w, http.StatusOK, msg, nil)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword replaces the caller's password.
// POST /api/v1/{super-admins|users}/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), identity(r), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgPasswordChanged, nil)
}
