package service

import "golang.org/x/crypto/bcrypt"

// DefaultHashCost is the bcrypt cost for passwords and one-time codes.
const DefaultHashCost = 12

// Hasher hashes and compares secrets with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a hasher with the given cost, or DefaultHashCost when
// cost is zero.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether secret hashes to hash. Malformed hashes never
// match.
func (h *Hasher) Matches(hash, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
