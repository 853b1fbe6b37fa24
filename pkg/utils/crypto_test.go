package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundtrip(t *testing.T) {
	encrypted, err := Encrypt([]byte("oauth-access-token"), cryptoKey)
	require.NoError(t, err)
	require.NotEqual(t, "oauth-access-token", encrypted)

	decrypted, err := Decrypt(encrypted, cryptoKey)
	require.NoError(t, err)
	assert.Equal(t, "oauth-access-token", decrypted)
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), cryptoKey)
	require.NoError(t, err)

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	_, err = Decrypt(encrypted, otherKey)
	require.Error(t, err)
}

func TestDecryptTruncatedData(t *testing.T) {
	_, err := Decrypt("AAAA", cryptoKey)
	require.Error(t, err)
}

func TestTokenRoundtrip(t *testing.T) {
	token, err := GenerateToken("jwt-secret", "42", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("jwt-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("jwt-secret", "42", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("jwt-secret", "42", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("jwt-secret", token)
	require.Error(t, err)
}

func TestGenerateRandomKeyUnique(t *testing.T) {
	a, err := GenerateRandomKey(16)
	require.NoError(t, err)
	b, err := GenerateRandomKey(16)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
