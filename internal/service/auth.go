package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// Messages of the login and reset flows.
const (
	MsgAllFieldsRequired = "All fields are required."
	MsgUserNotExist      = "User not exist."
	MsgUserDoesNotExist  = "User does not exist."
	MsgInvalidCredential = "Invalid credential"
	MsgInvalidOTP        = "Invalid OTP."
	MsgOTPVerified       = "OTP verified successfully."
	MsgPasswordUpdated   = "Password updated successfully."
	MsgPasswordChanged   = "Password changed successfully."
	MsgInvalidOldPass    = "Invalid old password."
)

// Session is the outcome of a successful OTP verification.
type Session struct {
	Tokens model.TokenPair
	// Profile is the sanitized principal: *model.Admin for admins and an
	// expanded *model.UserDetail for users.
	Profile any
}

// AuthService runs the login state machine for both principal kinds:
// password check, mailed OTP, token issuance, password reset, refresh, and
// logout.
type AuthService struct {
	store  store.Store
	tokens *TokenService
	otp    *OTPIssuer
	hasher *Hasher
	logger *slog.Logger
}

// NewAuthService wires the flows to their collaborators.
func NewAuthService(st store.Store, tokens *TokenService, otp *OTPIssuer, hasher *Hasher, logger *slog.Logger) *AuthService {
	return &AuthService{store: st, tokens: tokens, otp: otp, hasher: hasher, logger: logger}
}

func (s *AuthService) findByEmail(ctx context.Context, kind model.Kind, email, notFound string) (model.Principal, error) {
	p, err := s.store.FindPrincipalByEmail(ctx, kind, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(notFound)
	}
	if err != nil {
		return nil, apperr.Internal("find principal by email", err)
	}
	return p, nil
}

// Login checks the password and mails an OTP. No token is issued yet.
func (s *AuthService) Login(ctx context.Context, kind model.Kind, email, password string) (model.OTPAck, error) {
	if !required(email, password) {
		return model.OTPAck{}, apperr.Validation(MsgAllFieldsRequired)
	}
	p, err := s.findByEmail(ctx, kind, email, MsgUserNotExist)
	if err != nil {
		return model.OTPAck{}, err
	}
	if !s.hasher.Matches(p.PrincipalSecrets().PasswordHash, password) {
		s.logger.Info("login rejected", "kind", kind, "principal", p.PrincipalID())
		return model.OTPAck{}, apperr.Unauthenticated(MsgInvalidCredential)
	}
	return s.otp.Issue(ctx, kind, p.PrincipalID(), p.PrincipalEmail())
}

// VerifyOTP completes a login: the code is consumed, admins are marked
// verified, and a fresh token pair is issued. A wrong code leaves the
// pending one in place.
func (s *AuthService) VerifyOTP(ctx context.Context, kind model.Kind, email, code string) (*Session, error) {
	if !required(email, code) {
		return nil, apperr.Validation(MsgAllFieldsRequired)
	}
	p, err := s.findByEmail(ctx, kind, email, MsgUserDoesNotExist)
	if err != nil {
		return nil, err
	}
	if !s.otp.Verify(p, code) {
		return nil, apperr.Unauthenticated(MsgInvalidOTP)
	}
	if err := s.store.ConsumeOTP(ctx, kind, p.PrincipalID()); err != nil {
		return nil, apperr.Internal("consume otp", err)
	}

	tokens, err := s.tokens.IssuePair(ctx, kind, p.PrincipalID())
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, kind, p.PrincipalID())
	if err != nil {
		return nil, err
	}
	s.logger.Info("principal signed in", "kind", kind, "principal", p.PrincipalID())
	return &Session{Tokens: tokens, Profile: profile}, nil
}

func (s *AuthService) profile(ctx context.Context, kind model.Kind, id string) (any, error) {
	if kind == model.KindAdmin {
		admin, err := s.store.GetAdmin(ctx, id)
		if err != nil {
			return nil, apperr.Internal("load admin profile", err)
		}
		return admin, nil
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, apperr.Internal("load user profile", err)
	}
	detail, err := expandUser(ctx, s.store, user)
	if err != nil {
		return nil, apperr.Internal("expand user profile", err)
	}
	return detail, nil
}

// ForgotPassword mails a reset OTP. Unknown addresses get no OTP and no mail.
func (s *AuthService) ForgotPassword(ctx context.Context, kind model.Kind, email string) (model.OTPAck, error) {
	if !required(email) {
		return model.OTPAck{}, apperr.Validation("Email is required.")
	}
	p, err := s.findByEmail(ctx, kind, email, MsgUserNotExist)
	if err != nil {
		return model.OTPAck{}, err
	}
	return s.otp.Issue(ctx, kind, p.PrincipalID(), p.PrincipalEmail())
}

// ResetForgottenPassword sets a new password after the reset OTP matches.
// No token is issued.
func (s *AuthService) ResetForgottenPassword(ctx context.Context, kind model.Kind, email, code, password string) error {
	if !required(email, code, password) {
		return apperr.Validation(MsgAllFieldsRequired)
	}
	p, err := s.findByEmail(ctx, kind, email, MsgUserNotExist)
	if err != nil {
		return err
	}
	if !s.otp.Verify(p, code) {
		return apperr.Unauthenticated(MsgInvalidOTP)
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if err := s.setPassword(ctx, kind, p.PrincipalID(), password); err != nil {
		return err
	}
	if err := s.store.ConsumeOTP(ctx, kind, p.PrincipalID()); err != nil {
		return apperr.Internal("consume otp", err)
	}
	s.logger.Info("password reset", "kind", kind, "principal", p.PrincipalID())
	return nil
}

// ChangePassword replaces the password of a signed-in principal after
// checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, id *Identity, oldPassword, newPassword string) error {
	if !required(oldPassword, newPassword) {
		return apperr.Validation(MsgAllFieldsRequired)
	}
	p, err := s.store.FindPrincipal(ctx, id.Kind, id.ID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(MsgUserNotExist)
	}
	if err != nil {
		return apperr.Internal("load principal", err)
	}
	if !s.hasher.Matches(p.PrincipalSecrets().PasswordHash, oldPassword) {
		return apperr.Unauthenticated(MsgInvalidOldPass)
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	return s.setPassword(ctx, id.Kind, id.ID, newPassword)
}

func (s *AuthService) setPassword(ctx context.Context, kind model.Kind, id, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.store.SetPassword(ctx, kind, id, hash); err != nil {
		return apperr.Internal("store password", err)
	}
	return nil
}

// Refresh rotates the pair of the principal owning refreshToken.
func (s *AuthService) Refresh(ctx context.Context, kind model.Kind, refreshToken string) (model.TokenPair, error) {
	return s.tokens.Refresh(ctx, kind, refreshToken)
}

// Logout forgets the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, id *Identity) error {
	if err := s.tokens.Revoke(ctx, id.Kind, id.ID); err != nil {
		return err
	}
	s.logger.Info("principal signed out", "kind", id.Kind, "principal", id.ID)
	return nil
}
