package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Init("test-secret", 60)

	token, err := GenerateToken("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	Init("test-secret", 60)

	_, err := ParseToken("not-a-jwt")
	assert.Error(t, err)

	_, err = ParseToken("")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	Init("secret-one", 60)
	token, err := GenerateToken("user-123")
	require.NoError(t, err)

	Init("secret-two", 60)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestInitDefaultsTTL(t *testing.T) {
	Init("test-secret", 0)
	token, err := GenerateToken("user-123")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	// При нулевом TTL токен живет час, а не истекает мгновенно.
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(30*time.Minute)))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("secret123"))
}

func TestGenerateOTP(t *testing.T) {
	code, err := GenerateOTP()
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}
