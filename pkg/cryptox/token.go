package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	// TokenSize128 encodes to 22 base64url characters.
	TokenSize128 = 16
	// TokenSize256 encodes to 43 base64url characters. Used for invitation
	// and session tokens.
	TokenSize256 = 32
)

// GenerateToken returns size random bytes encoded as unpadded base64url, which
// is safe to place in URLs and cookies.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken is the deterministic SHA-256 digest stored in place of a
// token so a database leak does not hand out working links or sessions.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
