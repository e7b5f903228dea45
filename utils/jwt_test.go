package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Minute)

	signed, err := tokens.GenerateToken(42, "cashier")
	require.NoError(t, err)

	claims, err := tokens.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestParseTokenRejects(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Minute)

	t.Run("other secret", func(t *testing.T) {
		signed, err := NewTokenManager("other", time.Minute).GenerateToken(1, "admin")
		require.NoError(t, err)
		_, err = tokens.ParseToken(signed)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		claims := &CustomClaims{
			UserID: 1,
			Role:   "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				Issuer:    tokenIssuer,
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = tokens.ParseToken(signed)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := &CustomClaims{
			UserID:           1,
			Role:             "admin",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = tokens.ParseToken(signed)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.ParseToken("not-a-token")
		assert.Error(t, err)
	})
}
