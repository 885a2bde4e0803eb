// Package secret manages the opaque key authorizing the companion tool to
// push grimoire data on a broadcaster's behalf.
package secret

import "math/rand"

// Length of every generated key. Collision resistance is a non-goal; the
// key exists for operator convenience, not cryptographic strength.
const Length = 12

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func Generate() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Valid reports whether s looks like a key we could have generated.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
