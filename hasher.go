package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Deliberately slow and memory-hard to resist offline
// brute force of a leaked hash.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16 // bytes of entropy; stored hex-encoded
)

// PasswordHasher produces salted password hashes and verifies passwords
// against them in constant time.
type PasswordHasher interface {
	// Hash derives a salted hash in the form "salt.hexkey".
	Hash(password string) (string, error)

	// Compare reports whether password matches the stored hash. A stored
	// value that does not split into exactly two non-empty parts is a
	// malformed-hash error, not a mismatch.
	Compare(password, stored string) (bool, error)
}

// ScryptHasher implements PasswordHasher using scrypt key derivation.
type ScryptHasher struct{}

func NewScryptHasher() *ScryptHasher { return &ScryptHasher{} }

// Hash derives "salt.hexkey" with a fresh random salt. Two calls with the
// same password yield different outputs.
func (h *ScryptHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", wrapAuthError(ErrCodeHashing, "failed to generate salt", err)
	}
	saltHex := hex.EncodeToString(salt)

	key, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", wrapAuthError(ErrCodeHashing, "key derivation failed", err)
	}
	return saltHex + "." + hex.EncodeToString(key), nil
}

// Compare re-derives the key with the stored salt and compares in constant
// time, never short-circuiting on the first mismatching byte.
func (h *ScryptHasher) Compare(password, stored string) (bool, error) {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false, NewAuthError(ErrCodeMalformedHash, "invalid hash format", "")
	}

	storedKey, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, wrapAuthError(ErrCodeMalformedHash, "invalid hash encoding", err)
	}

	key, err := scrypt.Key([]byte(password), []byte(parts[0]), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false, wrapAuthError(ErrCodeHashing, "key derivation failed", err)
	}

	return subtle.ConstantTimeCompare(key, storedKey) == 1, nil
}
