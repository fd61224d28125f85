package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// Accounts created before bcrypt was adopted store an unsalted SHA-256 hex digest.
var legacyDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// IsLegacyHash reports whether hash should be upgraded after a successful login.
func IsLegacyHash(hash string) bool {
	return legacyDigest.MatchString(hash)
}

// ComparePassword reports whether plain matches the stored hash.
func ComparePassword(hash, plain string) bool {
	if IsLegacyHash(hash) {
		sum := sha256.Sum256([]byte(plain))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hash)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
