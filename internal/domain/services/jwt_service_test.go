package services

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService(secret string) *JWTService {
	return &JWTService{secretKey: secret, issuer: "amazondvc-admin"}
}

func TestJWTService_GenerateAndExtract(t *testing.T) {
	s := testJWTService("test-secret")

	token, err := s.GenerateToken(42, "admin", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "amazondvc-admin", claims.Issuer)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := testJWTService("secret-a").GenerateToken(1, "user", false)
	require.NoError(t, err)

	_, err = testJWTService("secret-b").ExtractClaims(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	s := testJWTService("test-secret")
	token, err := s.GenerateToken(1, "user", false)
	require.NoError(t, err)

	_, err = s.ExtractClaims(token + "x")
	assert.Error(t, err)
}

func TestJWTService_RejectsUnsignedToken(t *testing.T) {
	s := testJWTService("test-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id":  float64(1),
		"username": "user",
		"is_admin": true,
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.ExtractClaims(token)
	assert.Error(t, err)
}
