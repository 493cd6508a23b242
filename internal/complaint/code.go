package complaint

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet is the 36-character alphabet used for access codes.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codePrefix and codeLength define the CP-XXXXXX access code shape.
const (
	codePrefix = "CP-"
	codeLength = 6
)

// codeCutoff is the largest multiple of len(codeAlphabet) that fits in a
// byte. Bytes at or above it are discarded so a plain modulo does not skew
// the draw toward the low end of the alphabet.
const codeCutoff = 256 - 256%len(codeAlphabet)

// newAccessCode returns a random access code of the form CP-XXXXXX, drawn
// uniformly over the alphabet. Uniqueness is enforced by the caller against
// the store's unique index.
func newAccessCode() (string, error) {
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= codeCutoff || len(out) == codeLength {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
		}
	}
	return codePrefix + string(out), nil
}
