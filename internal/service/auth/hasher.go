package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Interface to create or compare secret hashes
// Used for both user passwords and issued refresh tokens: the server
// must not be able to recover either from what it stores
type PasswordHasher interface {
	// Generate hash from the secret
	Hash(secret string) (string, error)

	// Compare known hash and user provided secret
	// Must be protected against timing attacks
	Compare(hashed string, secret string) error
}

// DefaultHasher is used when no hasher is configured explicitly
var DefaultHasher PasswordHasher = BcryptHasher{}

// Bcrypt secret hasher
// Secrets are pre-hashed with sha256: bcrypt only reads the first 72 bytes
// of input and refresh tokens (JWTs) are longer than that
type BcryptHasher struct{}

func (h BcryptHasher) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hashed string, secret string) error {
	sum := sha256.Sum256([]byte(secret))
	return bcrypt.CompareHashAndPassword([]byte(hashed), sum[:])
}
