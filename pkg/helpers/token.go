package helpers

import (
	"crypto/rand"
	"encoding/hex"
)

// OneTimeTokenBytes is the entropy of verification and reset tokens.
const OneTimeTokenBytes = 32

// GenOneTimeToken returns a hex encoded random token for email links.
func GenOneTimeToken() (string, error) {
	b := make([]byte, OneTimeTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
