package service

import (
	"context"
	"errors"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// Identity is the verified caller of a protected route.
type Identity struct {
	ID           string
	Kind         model.Kind
	Role         model.Role
	Email        string
	FirstName    string
	LastName     string
	Organization string // empty only in detached mode
}

// Gate verifies access tokens and resolves them to an Identity. It never
// writes.
type Gate struct {
	tokens *TokenService
	store  store.Principals
}

// NewGate returns a gate backed by tokens and st.
func NewGate(tokens *TokenService, st store.Principals) *Gate {
	return &Gate{tokens: tokens, store: st}
}

// Verify checks token and loads its principal. In detached mode a principal
// without an organization is accepted; otherwise it is an unexpected state.
func (g *Gate) Verify(ctx context.Context, token string, detached bool) (*Identity, error) {
	if token == "" {
		return nil, apperr.MissingCredential()
	}

	claims, err := g.tokens.ParseAccess(token)
	if err != nil {
		return nil, apperr.InvalidCredential(apperr.MsgInvalidToken)
	}

	role, err := model.ParseRole(string(claims.Role))
	if err != nil || !store.ValidID(claims.Subject) {
		return nil, apperr.InvalidPayload()
	}

	p, err := g.store.FindPrincipal(ctx, role.Kind(), claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.InvalidCredential(apperr.MsgInvalidAccess)
	}
	if err != nil {
		return nil, apperr.Internal("load principal", err)
	}

	org := p.PrincipalOrganization()
	if org == "" && !detached {
		return nil, apperr.UnexpectedPrincipalState()
	}

	first, last := p.PrincipalName()
	return &Identity{
		ID:           p.PrincipalID(),
		Kind:         p.PrincipalKind(),
		Role:         p.PrincipalRole(),
		Email:        p.PrincipalEmail(),
		FirstName:    first,
		LastName:     last,
		Organization: org,
	}, nil
}
