package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "Dr. Jones", "doctor")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "Dr. Jones", claims["name"])
	assert.Equal(t, "doctor", claims["role"])
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := GenerateJWT("user-1", "p", "patient")
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestRefreshTokenType(t *testing.T) {
	access, err := GenerateJWT("user-1", "p", "patient")
	require.NoError(t, err)
	refresh, err := GenerateRefreshToken("user-1", "p", "patient")
	require.NoError(t, err)

	// An access token must not pass as a refresh token.
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)

	claims, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
}
