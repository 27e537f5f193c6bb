package crypto_test

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passlock/passlock/internal/infrastructure/crypto"
	"github.com/passlock/passlock/pkg/errors"
)

func TestEnvelopeKeyManager_ProvisionAndUnwrap(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("correct horse battery staple")
	require.Nil(t, appErr)
	require.NotNil(t, material)
	assert.False(t, material.CreatedAt.IsZero())

	salt, err := base64.StdEncoding.DecodeString(material.Salt)
	require.NoError(t, err)
	assert.Len(t, salt, 32)

	wrapped, err := base64.StdEncoding.DecodeString(material.WrappedKey)
	require.NoError(t, err)
	assert.Greater(t, len(wrapped), 12, "wrapped key carries a nonce plus ciphertext")

	dek, appErr := m.UnwrapKey("correct horse battery staple", material.Salt, material.WrappedKey)
	require.Nil(t, appErr)
	assert.Len(t, dek, 32)
}

func TestEnvelopeKeyManager_ProvisionIsUniquePerUser(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	a, appErr := m.ProvisionKey("same password")
	require.Nil(t, appErr)
	b, appErr := m.ProvisionKey("same password")
	require.Nil(t, appErr)

	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.WrappedKey, b.WrappedKey)
}

func TestEnvelopeKeyManager_WrongPassword(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("right password")
	require.Nil(t, appErr)

	dek, appErr := m.UnwrapKey("wrong password", material.Salt, material.WrappedKey)
	assert.Nil(t, dek)
	require.NotNil(t, appErr)
	assert.True(t, errors.IsCryptoFailure(appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus())
}

func TestEnvelopeKeyManager_MalformedMaterial(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("pw")
	require.Nil(t, appErr)

	cases := map[string]struct{ salt, wrapped string }{
		"bad salt base64":     {"!!not base64!!", material.WrappedKey},
		"bad wrapped base64":  {material.Salt, "!!not base64!!"},
		"truncated ciphertext": {material.Salt, base64.StdEncoding.EncodeToString([]byte("tiny"))},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dek, appErr := m.UnwrapKey("pw", tc.salt, tc.wrapped)
			assert.Nil(t, dek)
			require.NotNil(t, appErr)
			assert.True(t, errors.IsCryptoFailure(appErr))
		})
	}
}

func TestEnvelopeKeyManager_EncryptDecryptRoundTrip(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("pw")
	require.Nil(t, appErr)
	dek, appErr := m.UnwrapKey("pw", material.Salt, material.WrappedKey)
	require.Nil(t, appErr)

	ciphertext, appErr := m.Encrypt("hunter2", dek)
	require.Nil(t, appErr)
	assert.NotContains(t, ciphertext, "hunter2")

	plaintext, appErr := m.Decrypt(ciphertext, dek)
	require.Nil(t, appErr)
	assert.Equal(t, "hunter2", plaintext)
}

func TestEnvelopeKeyManager_FreshNoncePerEncryption(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("pw")
	require.Nil(t, appErr)
	dek, appErr := m.UnwrapKey("pw", material.Salt, material.WrappedKey)
	require.Nil(t, appErr)

	a, appErr := m.Encrypt("same plaintext", dek)
	require.Nil(t, appErr)
	b, appErr := m.Encrypt("same plaintext", dek)
	require.Nil(t, appErr)

	assert.NotEqual(t, a, b, "identical plaintexts never share a nonce")
}

func TestEnvelopeKeyManager_TamperDetection(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("pw")
	require.Nil(t, appErr)
	dek, appErr := m.UnwrapKey("pw", material.Salt, material.WrappedKey)
	require.Nil(t, appErr)

	ciphertext, appErr := m.Encrypt("secret entry", dek)
	require.Nil(t, appErr)

	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0x01
	forged := base64.StdEncoding.EncodeToString(blob)

	plaintext, appErr := m.Decrypt(forged, dek)
	assert.Empty(t, plaintext)
	require.NotNil(t, appErr)
	assert.True(t, errors.IsCryptoFailure(appErr))
}

func TestEnvelopeKeyManager_RotateKey(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("old password")
	require.Nil(t, appErr)
	dek, appErr := m.UnwrapKey("old password", material.Salt, material.WrappedKey)
	require.Nil(t, appErr)

	// Entries written before the rotation must stay readable afterwards.
	ciphertext, appErr := m.Encrypt("pre-rotation entry", dek)
	require.Nil(t, appErr)

	rotated, appErr := m.RotateKey("old password", "new password", material.Salt, material.WrappedKey)
	require.Nil(t, appErr)
	assert.NotEqual(t, material.Salt, rotated.Salt)
	assert.NotEqual(t, material.WrappedKey, rotated.WrappedKey)
	assert.False(t, rotated.UpdatedAt.IsZero())

	newDEK, appErr := m.UnwrapKey("new password", rotated.Salt, rotated.WrappedKey)
	require.Nil(t, appErr)
	assert.Equal(t, dek, newDEK, "rotation re-wraps the same data key")

	plaintext, appErr := m.Decrypt(ciphertext, newDEK)
	require.Nil(t, appErr)
	assert.Equal(t, "pre-rotation entry", plaintext)

	// The old password no longer opens the rotated material.
	_, appErr = m.UnwrapKey("old password", rotated.Salt, rotated.WrappedKey)
	assert.NotNil(t, appErr)
}

func TestEnvelopeKeyManager_RotateWithWrongOldPassword(t *testing.T) {
	m := crypto.NewEnvelopeKeyManager()

	material, appErr := m.ProvisionKey("old password")
	require.Nil(t, appErr)

	rotated, appErr := m.RotateKey("not the password", "new password", material.Salt, material.WrappedKey)
	assert.Nil(t, rotated)
	require.NotNil(t, appErr)
	assert.True(t, errors.IsCryptoFailure(appErr))
}
