package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
)

const tokenBytes = 32

// SHA256Digester issues URL-safe random tokens and stores only their SHA-256.
// Tokens carry 256 bits of entropy, so an unsalted fast digest is enough.
type SHA256Digester struct{}

func NewSHA256Digester() SHA256Digester { return SHA256Digester{} }

func (SHA256Digester) NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (SHA256Digester) Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (d SHA256Digester) Matches(token, digest string) bool {
	if token == "" || digest == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(d.Digest(token)), []byte(digest)) == 1
}

var _ ports.TokenDigester = SHA256Digester{}
