package auth

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// Hasher hashes and compares secrets with bcrypt at a fixed cost.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

// NewHasher returns a Hasher; cost is clamped to bcrypt's valid range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the work factor in use.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash generates a salted bcrypt hash for the given secret.
func (h *Hasher) Hash(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		slog.Error("error generating bcrypt hash", "error", err)
		return "", err
	}
	return string(bytes), nil
}

// Check compares a plaintext secret with a stored bcrypt hash.
func (h *Hasher) Check(secret, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			// Log unexpected errors, but still return false for security
			slog.Warn("error comparing bcrypt hash", "error", err)
		}
		return false
	}
	return true
}

// CheckDecoy burns one comparison at the configured cost and always reports
// false. Callers use it when there is no stored hash so that a missing
// account costs the same as a wrong secret.
func (h *Hasher) CheckDecoy(secret string) bool {
	h.decoyOnce.Do(func() {
		h.decoy, _ = bcrypt.GenerateFromPassword([]byte("void-decoy"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(secret))
	return false
}

// NormalizeAnswer is applied to security answers both when they are stored
// and when they are checked.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
