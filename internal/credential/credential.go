// Package credential provides one-way password hashing and verification.
//
// Hashes are bcrypt; the work factor is explicit and configurable. bcrypt
// embeds the cost in the stored hash, so raising the cost for new hashes never
// invalidates previously stored ones.
package credential

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	dErrors "medivault/pkg/domain-errors"
)

// DefaultCost mirrors the deployment default work factor. Tune via
// config, not by editing call sites.
const DefaultCost = 12

// Store hashes and verifies credentials at a fixed work factor.
type Store struct {
	cost   int
	logger *slog.Logger
}

// New builds a Store with the given bcrypt cost. Costs outside bcrypt's
// supported range are rejected so a misconfigured deployment fails at startup
// rather than silently clamping.
func New(cost int, logger *slog.Logger) (*Store, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cost: cost, logger: logger}, nil
}

// Hash produces a salted one-way hash of password. Salt is fresh per call, so
// repeated calls with the same password yield different stored values that all
// verify against it.
func (s *Store) Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. Comparison is
// constant-time inside bcrypt. A malformed stored hash is treated as a
// non-match and logged as an anomaly; the caller only ever sees a generic
// authentication failure, never hash internals.
func (s *Store) Verify(password, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		// Anything other than a plain mismatch means the stored hash is
		// corrupt or truncated. Fail closed.
		s.logger.Warn("malformed credential hash encountered",
			"log_type", "audit", "anomaly", "credential_hash_malformed")
	}
	return false
}
