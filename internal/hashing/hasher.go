// Package hashing implements salted, iterated password hashing with
// backward-compatible verification of digests produced before the iterated
// scheme existed. Verification walks an explicit ordered list of schemes so
// that a new scheme can be appended without touching call sites.
package hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	"github.com/velmaris/votekeep/internal/common"
)

// DefaultIterations is the key-stretching count of the current scheme.
const DefaultIterations = 10000

const saltSize = 16

// Scheme names, reported by VerifyScheme. Anything other than
// SchemeCurrent is a cue to rehash on the next password-changing operation.
const (
	SchemeCurrent        = "iterated-sha256"
	SchemeLegacy         = "legacy-sha256"
	SchemeLegacyUnsalted = "legacy-sha256-unsalted"
)

type Hasher struct {
	iterations int
}

// New returns a Hasher using the given iteration count for new digests.
// A non-positive count falls back to DefaultIterations.
func New(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

// GenerateSalt produces a fresh random salt, base64-encoded for storage.
// A new salt is generated for every new credential and password change;
// salts are never reused.
func (h *Hasher) GenerateSalt() (string, error) {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Hash digests password under the current scheme: SHA-256 over
// decodedSalt‖password, re-digested until the iteration count is reached,
// base64-encoded. An empty password returns common.ErrEmptyPassword (the
// "not hashed" signal); callers treat it as invalid input, not a mismatch.
func (h *Hasher) Hash(password, salt string) (string, error) {
	if password == "" {
		return "", common.ErrEmptyPassword
	}
	return h.iterated(password, salt), nil
}

// Verify reports whether password matches digest under any known scheme.
func (h *Hasher) Verify(password, digest, salt string) bool {
	ok, _ := h.VerifyScheme(password, digest, salt)
	return ok
}

// VerifyScheme tries the current scheme, then the legacy single-pass scheme
// with the given salt, then the legacy scheme with no salt. The first match
// wins and its scheme name is returned. Historical accounts keep
// authenticating without any stored-data migration.
func (h *Hasher) VerifyScheme(password, digest, salt string) (bool, string) {
	if password == "" || digest == "" {
		return false, ""
	}

	for _, s := range h.schemes() {
		if s.verify(password, digest, salt) {
			return true, s.name
		}
	}
	return false, ""
}

type scheme struct {
	name   string
	verify func(password, digest, salt string) bool
}

func (h *Hasher) schemes() []scheme {
	return []scheme{
		{SchemeCurrent, func(p, d, s string) bool {
			return constantTimeEqual(h.iterated(p, s), d)
		}},
		{SchemeLegacy, func(p, d, s string) bool {
			return matchesSingle(p, d, s)
		}},
		{SchemeLegacyUnsalted, func(p, d, _ string) bool {
			return matchesSingle(p, d, "")
		}},
	}
}

func (h *Hasher) iterated(password, salt string) string {
	sum := sha256.Sum256(append(saltBytes(salt), []byte(password)...))
	for i := 1; i < h.iterations; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return base64.StdEncoding.EncodeToString(sum[:])
}

// LegacyHash digests password under the retired single-pass scheme,
// base64-encoded. New digests always go through Hash; this exists so the
// import tooling and tests can reproduce digests from the old store.
func LegacyHash(password, salt string) (string, error) {
	if password == "" {
		return "", common.ErrEmptyPassword
	}
	sum := sha256.Sum256(append(saltBytes(salt), []byte(password)...))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// matchesSingle checks a single-pass SHA-256 of salt‖password against the
// stored digest. Legacy rows were written with either base64 or hex
// encoding depending on their era, so both renderings are tried.
func matchesSingle(password, digest, salt string) bool {
	sum := sha256.Sum256(append(saltBytes(salt), []byte(password)...))
	if constantTimeEqual(base64.StdEncoding.EncodeToString(sum[:]), digest) {
		return true
	}
	return constantTimeEqual(hex.EncodeToString(sum[:]), digest)
}

// saltBytes decodes a base64 salt, falling back to the raw bytes for salts
// preserved verbatim from the legacy store.
func saltBytes(salt string) []byte {
	if salt == "" {
		return nil
	}
	if b, err := base64.StdEncoding.DecodeString(salt); err == nil {
		return b
	}
	return []byte(salt)
}

func constantTimeEqual(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
