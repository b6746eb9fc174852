package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/mail"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// One-time codes are four digits.
const (
	otpMin = 1000
	otpMax = 9999
)

// MsgOTPSent acknowledges a mailed code.
const MsgOTPSent = "OTP is sent to your email."

// OTPIssuer generates, stores, mails, and verifies one-time codes. Only the
// bcrypt hash of a code is persisted; the plaintext exists in the email.
type OTPIssuer struct {
	store  store.Principals
	mailer mail.Mailer
	hasher *Hasher
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewOTPIssuer returns an issuer whose codes expire after ttl.
func NewOTPIssuer(st store.Principals, mailer mail.Mailer, hasher *Hasher, ttl time.Duration, logger *slog.Logger) *OTPIssuer {
	return &OTPIssuer{
		store:  st,
		mailer: mailer,
		hasher: hasher,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue replaces the principal's pending code with a fresh one and mails it
// to email.
func (o *OTPIssuer) Issue(ctx context.Context, kind model.Kind, id, email string) (model.OTPAck, error) {
	code, err := generateOTP()
	if err != nil {
		return model.OTPAck{}, apperr.Internal("generate otp", err)
	}
	hash, err := o.hasher.Hash(code)
	if err != nil {
		return model.OTPAck{}, apperr.Internal("hash otp", err)
	}

	err = o.store.SetOTP(ctx, kind, id, hash, o.now())
	if errors.Is(err, store.ErrNotFound) {
		return model.OTPAck{}, apperr.NotFound("User not exist.")
	}
	if err != nil {
		return model.OTPAck{}, apperr.Internal("store otp", err)
	}

	msg, err := mail.OTPMessage(email, code, o.ttl)
	if err != nil {
		return model.OTPAck{}, apperr.Internal("render otp mail", err)
	}
	if err := o.mailer.Send(ctx, msg); err != nil {
		return model.OTPAck{}, apperr.Internal("send otp mail", err)
	}
	o.logger.Info("otp issued", "kind", kind, "principal", id)

	return model.OTPAck{Success: true, Message: MsgOTPSent, Email: email}, nil
}

// Verify reports whether candidate matches the principal's pending, unexpired
// code.
func (o *OTPIssuer) Verify(p model.Principal, candidate string) bool {
	secrets := p.PrincipalSecrets()
	if secrets.OTPHash == "" || candidate == "" {
		return false
	}
	// A code without an issue time cannot be aged and counts as expired.
	if secrets.OTPIssuedAt.IsZero() || o.now().Sub(secrets.OTPIssuedAt) > o.ttl {
		return false
	}
	return o.hasher.Matches(secrets.OTPHash, candidate)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
