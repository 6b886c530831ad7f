package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Mismatch error of the argon2 hasher, mirrors bcrypt returning its own
// mismatch error. Callers treat any Compare error as a failed match
var errHashMismatch = errors.New("hash and secret mismatch")

// Argon2id secret hasher, alternative to BcryptHasher
// Parameters follow the OWASP password storage recommendations
// Hashes are stored in PHC string format: $argon2id$v=19$m=...,t=...,p=...$salt$key
type Argon2Hasher struct {
	Memory      uint32 // memory cost in KiB
	Time        uint32 // iterations
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func NewArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (h Argon2Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error while generating salt. Err: %w", err)
	}

	key := argon2.IDKey([]byte(secret), salt, h.Time, h.Memory, h.Parallelism, h.KeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.Memory,
		h.Time,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

func (h Argon2Hasher) Compare(hashed string, secret string) error {
	params, salt, key, err := decodePHC(hashed)
	if err != nil {
		return err
	}

	computed := argon2.IDKey([]byte(secret), salt, params.Time, params.Memory, params.Parallelism, uint32(len(key)))

	if subtle.ConstantTimeCompare(key, computed) != 1 {
		return errHashMismatch
	}
	return nil
}

func decodePHC(encoded string) (Argon2Hasher, []byte, []byte, error) {
	var params Argon2Hasher

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, errors.New("not an argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, fmt.Errorf("invalid version. Err: %w", err)
	}
	if version != argon2.Version {
		return params, nil, nil, errors.New("unsupported argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Parallelism); err != nil {
		return params, nil, nil, fmt.Errorf("invalid parameters. Err: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("invalid salt. Err: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, fmt.Errorf("invalid key. Err: %w", err)
	}

	return params, salt, key, nil
}
