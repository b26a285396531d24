package ports

import "time"

// PasswordHasher hashes and verifies passwords (Argon2id).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenDigester creates one-time tokens and their one-way digests.
type TokenDigester interface {
	NewToken() (string, error)
	Digest(token string) string
	// Matches compares a presented token against a stored digest in constant time.
	Matches(token, digest string) bool
}

// TokenIssuer signs and validates access tokens (RS256).
type TokenIssuer interface {
	IssueAccessToken(accountID string, ttl time.Duration) (string, error)
	ValidateAccessToken(tokenString string) (accountID string, err error)
}
