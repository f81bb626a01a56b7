package helpers

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenOneTimeToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := GenOneTimeToken()
		require.NoError(t, err)
		assert.Len(t, tok, OneTimeTokenBytes*2)
		_, err = hex.DecodeString(tok)
		assert.NoError(t, err)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
