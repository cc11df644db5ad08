package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	stored, err := Encrypt(testKey, "super-secret-auth-token")
	require.NoError(t, err)
	assert.True(t, IsEncrypted(stored))
	assert.True(t, strings.Contains(stored, ":"))

	plain, err := Decrypt(testKey, stored)
	require.NoError(t, err)
	assert.Equal(t, "super-secret-auth-token", plain)
}

func TestEncryptEmptyPassesThrough(t *testing.T) {
	stored, err := Encrypt(testKey, "")
	require.NoError(t, err)
	assert.Equal(t, "", stored)
}

func TestDecryptPlaintextPassesThrough(t *testing.T) {
	plain, err := Decrypt(testKey, "not-encrypted")
	require.NoError(t, err)
	assert.Equal(t, "not-encrypted", plain)
}

func TestEncryptProducesFreshIV(t *testing.T) {
	a, err := Encrypt(testKey, "same")
	require.NoError(t, err)
	b, err := Encrypt(testKey, "same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
