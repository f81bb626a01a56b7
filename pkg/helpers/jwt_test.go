package helpers

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("access-secret", "refresh-secret", 7*24*time.Hour, 21*24*time.Hour)
	require.NoError(t, err)
	return m
}

var alice = Subject{UserID: "u-1", FirstName: "Alice", LastName: "Liddell", Email: "alice@x.com"}

func TestNewJWTManager_RequiresSecrets(t *testing.T) {
	_, err := NewJWTManager("", "refresh", time.Hour, time.Hour)
	assert.Error(t, err)
	_, err = NewJWTManager("access", "", time.Hour, time.Hour)
	assert.Error(t, err)
	_, err = NewJWTManager("access", "refresh", 0, time.Hour)
	assert.Error(t, err)
}

func TestGenerateTokenPair_ClaimsAndExpiry(t *testing.T) {
	m := newTestJWT(t)
	before := time.Now()

	pair, err := m.GenerateTokenPair(alice)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.Before(pair.RefreshTokenExpiry))
	assert.WithinDuration(t, before.Add(7*24*time.Hour), pair.AccessTokenExpiry, 5*time.Second)

	claims, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "Alice", claims.FirstName)
	assert.Equal(t, "Liddell", claims.LastName)
	assert.Equal(t, "alice@x.com", claims.Email)

	claims, err = m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestParse_SecretsAreNotInterchangeable(t *testing.T) {
	m := newTestJWT(t)
	pair, err := m.GenerateTokenPair(alice)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_ExpiredTokenIsInvalid(t *testing.T) {
	m := newTestJWT(t)
	pair, err := m.GenerateTokenPair(alice)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	_, err = m.ParseAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestParse_MalformedAndForeignTokens(t *testing.T) {
	m := newTestJWT(t)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := m.ParseAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}

	other, err := NewJWTManager("someone-else", "refresh-secret", time.Hour, time.Hour)
	require.NoError(t, err)
	forged, _, err := other.GenerateAccessToken(alice)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_TamperedPayload(t *testing.T) {
	m := newTestJWT(t)
	tok, _, err := m.GenerateAccessToken(alice)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"uid":"admin","exp":9999999999}`))

	_, err = m.ParseAccessToken(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
