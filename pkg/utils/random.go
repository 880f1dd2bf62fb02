package utils

import (
	"crypto/rand"
	"math/big"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateToken generates a cryptographically random string of length n
// drawn from a 62-character alphabet. At n=24 a token carries ~142 bits of
// entropy, which keeps possession-is-credential tokens unguessable.
func GenerateToken(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return ""
		}
		b[i] = tokenCharset[num.Int64()]
	}
	return string(b)
}
