// internal/lobby/code.go
package lobby

import (
	"context"
	"math/rand"
)

// CodeLength is the fixed length of a lobby join code.
const CodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode produces a random lobby code not currently assigned to a live
// lobby. With a 36^6 code space collisions are vanishingly rare at realistic
// lobby counts, so the loop is unbounded; store errors still abort it.
func GenerateCode(ctx context.Context, store Store) (string, error) {
	for {
		code := randomCode()
		exists, err := store.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func randomCode() string {
	b := make([]byte, CodeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// ValidCode reports whether code is exactly CodeLength characters drawn from
// the [A-Z0-9] alphabet. Handlers reject anything else before touching the store.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
