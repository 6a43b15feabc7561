// Package token provides random ID generation and credential comparison.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// DefaultLength is the default random ID length in bytes.
const DefaultLength = 32

// Generate generates a cryptographically secure random value.
//
// The returned value is Base64 RawURL encoded for safe URL transmission.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a random value with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Equal compares a presented credential against a stored value.
//
// Semantically this is exact string equality; the constant-time comparison
// only prevents the comparison itself from leaking a match prefix.
func Equal(presented, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}
