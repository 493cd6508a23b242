package complaint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessCode_Shape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := newAccessCode()
		require.NoError(t, err)
		require.Len(t, code, len(codePrefix)+codeLength)
		assert.True(t, strings.HasPrefix(code, codePrefix))
		for _, c := range code[len(codePrefix):] {
			assert.Contains(t, codeAlphabet, string(c))
		}
	}
}

func TestNewAccessCode_CoversAlphabet(t *testing.T) {
	// With uniform draws, 5000 codes (30000 characters) reach every one of
	// the 36 alphabet characters with overwhelming probability.
	seen := make(map[byte]bool)
	for i := 0; i < 5000; i++ {
		code, err := newAccessCode()
		require.NoError(t, err)
		for j := len(codePrefix); j < len(code); j++ {
			seen[code[j]] = true
		}
	}
	for i := 0; i < len(codeAlphabet); i++ {
		assert.True(t, seen[codeAlphabet[i]], "character %c never drawn", codeAlphabet[i])
	}
}
