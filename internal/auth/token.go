// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Signing keys for auth tokens. Generated at startup; tokens do not survive a
// process restart, which is acceptable for game sessions.
var (
	signingKey ed25519.PrivateKey
	verifyKey  ed25519.PublicKey

	// TokenTTL is the lifetime of issued tokens. Zero means tokens never expire.
	TokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair and reads TOKEN_TTL from the environment
// (a Go duration string; empty, "0" or "never" disables expiry).
func Init() error {
	var err error
	verifyKey, signingKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return parseTokenTTL()
}

func parseTokenTTL() error {
	raw := os.Getenv("TOKEN_TTL")
	if raw == "" || raw == "0" || raw == "never" {
		TokenTTL = 0
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid TOKEN_TTL %q: %w", raw, err)
	}
	TokenTTL = d
	return nil
}

// NewToken mints a signed JWT whose "sub" claim carries the user ID.
func NewToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
	}
	if TokenTTL > 0 {
		claims["exp"] = time.Now().Add(TokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(signingKey)
}

// VerifyToken validates a JWT and returns the user ID from its "sub" claim.
func VerifyToken(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return verifyKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("token parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("token missing sub claim")
	}
	return sub, nil
}
