package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

const msgInvalidRefresh = "Invalid refresh token."

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the access/refresh pair and keeps the
// current refresh token on the principal.
type TokenService struct {
	store         store.Principals
	accessSecret  []byte
	refreshSecret []byte
	adminTTL      time.Duration
	userTTL       time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenService builds a token service from validated auth settings.
func NewTokenService(st store.Principals, cfg config.AuthConfig) *TokenService {
	return &TokenService{
		store:         st,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		adminTTL:      cfg.AdminAccessTTL(),
		userTTL:       cfg.UserAccessTTL(),
		refreshTTL:    cfg.RefreshTTL(),
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
}

// AccessTTL returns the access token lifetime for kind.
func (s *TokenService) AccessTTL(kind model.Kind) time.Duration {
	if kind == model.KindAdmin {
		return s.adminTTL
	}
	return s.userTTL
}

// RefreshTTL returns the refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssuePair mints a new pair for the principal and stores the refresh token,
// replacing any previous one.
func (s *TokenService) IssuePair(ctx context.Context, kind model.Kind, id string) (model.TokenPair, error) {
	p, err := s.store.FindPrincipal(ctx, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.TokenPair{}, apperr.NotFound("User not exist.")
	}
	if err != nil {
		return model.TokenPair{}, apperr.Internal("load principal", err)
	}
	return s.issue(ctx, p)
}

func (s *TokenService) issue(ctx context.Context, p model.Principal) (model.TokenPair, error) {
	access, err := s.sign(p, s.accessSecret, s.AccessTTL(p.PrincipalKind()))
	if err != nil {
		return model.TokenPair{}, apperr.Internal("sign access token", err)
	}
	refresh, err := s.sign(p, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, apperr.Internal("sign refresh token", err)
	}
	if err := s.store.SetRefreshToken(ctx, p.PrincipalKind(), p.PrincipalID(), &refresh); err != nil {
		return model.TokenPair{}, apperr.Internal("store refresh token", err)
	}
	return model.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(p model.Principal, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	first, last := p.PrincipalName()
	claims := Claims{
		FirstName: first,
		LastName:  last,
		Email:     p.PrincipalEmail(),
		Role:      p.PrincipalRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.PrincipalID(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// Two pairs minted in the same second must still differ.
			ID: uuid.Must(uuid.NewV7()).String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccess verifies an access token's signature and expiry.
func (s *TokenService) ParseAccess(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, s.accessSecret)
}

// ParseRefresh verifies a refresh token's signature and expiry.
func (s *TokenService) ParseRefresh(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, s.refreshSecret)
}

func (s *TokenService) parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Refresh exchanges the stored refresh token of a principal of kind for a
// new pair. Tokens that were already rotated out are rejected.
func (s *TokenService) Refresh(ctx context.Context, kind model.Kind, refreshToken string) (model.TokenPair, error) {
	if refreshToken == "" {
		return model.TokenPair{}, apperr.Unauthenticated("Refresh token is missing.")
	}
	claims, err := s.ParseRefresh(refreshToken)
	if err != nil {
		return model.TokenPair{}, apperr.Unauthenticated(msgInvalidRefresh)
	}
	role, err := model.ParseRole(string(claims.Role))
	if err != nil || role.Kind() != kind || !store.ValidID(claims.Subject) {
		return model.TokenPair{}, apperr.Unauthenticated(msgInvalidRefresh)
	}

	p, err := s.store.FindPrincipal(ctx, kind, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return model.TokenPair{}, apperr.Unauthenticated(msgInvalidRefresh)
	}
	if err != nil {
		return model.TokenPair{}, apperr.Internal("load principal", err)
	}

	stored := p.PrincipalSecrets().RefreshToken
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return model.TokenPair{}, apperr.Unauthenticated(msgInvalidRefresh)
	}
	return s.issue(ctx, p)
}

// Revoke clears the stored refresh token.
func (s *TokenService) Revoke(ctx context.Context, kind model.Kind, id string) error {
	err := s.store.SetRefreshToken(ctx, kind, id, nil)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not exist.")
	}
	if err != nil {
		return apperr.Internal("clear refresh token", err)
	}
	return nil
}
