// Package hasher wraps bcrypt for password storage. bcrypt salts every
// hash itself, so two hashes of the same plaintext never match, and its
// comparison runs in constant time.
package hasher

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords. The cost is injectable so tests
// can use bcrypt.MinCost.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Costs outside the
// valid bcrypt range fall back to bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash produces a salted one-way hash of plaintext. The salt is embedded
// in the returned blob.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash blob.
// A malformed blob yields false, never an error.
func (h *Hasher) Verify(plaintext, blob string) bool {
	return bcrypt.CompareHashAndPassword([]byte(blob), []byte(plaintext)) == nil
}
