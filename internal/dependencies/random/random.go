package random

import (
	"crypto/rand"
	"encoding/binary"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n).
// Rejection sampling keeps the distribution uniform.
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}

	bound := uint64(n)
	limit := (^uint64(0) / bound) * bound

	var buf [8]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand.Read does not fail on supported platforms
			return 0
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % bound)
		}
	}
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}

	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(out)
}
