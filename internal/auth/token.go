package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// NewSessionToken returns a 256-bit random token and its storable hash.
// The raw value is handed to the client exactly once; only the hash is
// persisted, and lookups always go through HashToken.
func NewSessionToken() (raw string, hash string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken is deliberately a fast hash: session tokens are high-entropy
// random values used as lookup keys, not low-entropy secrets needing an
// adaptive KDF.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
