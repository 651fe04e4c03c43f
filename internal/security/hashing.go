package security

import "golang.org/x/crypto/bcrypt"

// Hasher wraps bcrypt for the dev stub's account passwords. Plaintext must
// never be logged or stored; only the hash leaves this package.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher at the given cost, clamped to bcrypt's valid
// range. Zero or negative cost selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of password as a storable string.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports via its error whether password matches the stored hash;
// nil means a match.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
