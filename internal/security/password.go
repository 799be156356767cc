package security

import "golang.org/x/crypto/bcrypt"

// bcrypt reads at most the first 72 bytes of its input; longer passwords are
// truncated to that prefix before hashing and verification so both operate on
// the same key material and Hash never fails on a long password.
const maxPasswordBytes = 72

// Hasher wraps bcrypt with an explicit cost so tests and deployments can
// construct their own instance instead of mutating package state.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. Malformed or
// truncated hashes fail closed: the comparison returns false, never an error
// surfaced to the caller.
func (h *Hasher) Verify(plaintext string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(plaintext)) == nil
}

func passwordBytes(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
