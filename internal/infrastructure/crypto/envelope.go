// Package crypto implements envelope encryption for user vault data. Each
// user gets a random data-encryption key (DEK) wrapped under a key-encryption
// key (KEK) derived from the user's password, so stored secrets are never
// protected by anything derivable from the database alone.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/internal/domain/service"
	"github.com/passlock/passlock/pkg/errors"
)

const (
	// saltLength is the raw salt size in bytes.
	saltLength = 32
	// keyLength is the AES-256 key size for both the KEK and the DEK.
	keyLength = 32
	// pbkdf2Iterations is fixed: changing it silently would orphan every
	// wrapped key already stored.
	pbkdf2Iterations = 100_000
)

// EnvelopeKeyManager implements service.EnvelopeService with AES-256-GCM and
// PBKDF2-SHA256. Nonces are always drawn fresh from crypto/rand and prepended
// to the ciphertext; there is no code path that accepts a caller-supplied
// nonce.
type EnvelopeKeyManager struct{}

var _ service.EnvelopeService = (*EnvelopeKeyManager)(nil)

// NewEnvelopeKeyManager creates the key manager.
func NewEnvelopeKeyManager() *EnvelopeKeyManager {
	return &EnvelopeKeyManager{}
}

// ProvisionKey generates the per-user key material at registration. Only the
// salt and the wrapped DEK are returned; the password, the KEK, and the
// plaintext DEK do not outlive this call.
func (m *EnvelopeKeyManager) ProvisionKey(password string) (*models.UserKeyMaterial, *errors.AppError) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}

	kek := deriveKEK(password, salt)
	defer zeroize(kek)

	dek := make([]byte, keyLength)
	if _, err := rand.Read(dek); err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}
	defer zeroize(dek)

	wrapped, err := seal(dek, kek)
	if err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}

	return &models.UserKeyMaterial{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		WrappedKey: base64.StdEncoding.EncodeToString(wrapped),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// UnwrapKey re-derives the KEK from the password and salt and unwraps the
// DEK. A wrong password, a malformed blob, and a forged ciphertext are
// indistinguishable to the caller.
func (m *EnvelopeKeyManager) UnwrapKey(password, salt, wrappedKey string) ([]byte, *errors.AppError) {
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}

	wrappedBytes, err := base64.StdEncoding.DecodeString(wrappedKey)
	if err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}

	kek := deriveKEK(password, saltBytes)
	defer zeroize(kek)

	dek, err := open(wrappedBytes, kek)
	if err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}
	return dek, nil
}

// RotateKey re-wraps the existing DEK under a KEK derived from the new
// password and a fresh salt. Stored payloads stay decryptable because the DEK
// itself does not change.
func (m *EnvelopeKeyManager) RotateKey(oldPassword, newPassword, salt, wrappedKey string) (*models.UserKeyMaterial, *errors.AppError) {
	dek, appErr := m.UnwrapKey(oldPassword, salt, wrappedKey)
	if appErr != nil {
		return nil, appErr
	}
	defer zeroize(dek)

	newSalt := make([]byte, saltLength)
	if _, err := rand.Read(newSalt); err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}

	kek := deriveKEK(newPassword, newSalt)
	defer zeroize(kek)

	wrapped, err := seal(dek, kek)
	if err != nil {
		return nil, errors.ErrCryptoFailure().WithCause(err)
	}

	now := time.Now().UTC()
	return &models.UserKeyMaterial{
		Salt:       base64.StdEncoding.EncodeToString(newSalt),
		WrappedKey: base64.StdEncoding.EncodeToString(wrapped),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Encrypt protects one vault payload under the given key.
func (m *EnvelopeKeyManager) Encrypt(plaintext string, key []byte) (string, *errors.AppError) {
	sealed, err := seal([]byte(plaintext), key)
	if err != nil {
		return "", errors.ErrCryptoFailure().WithCause(err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any tampering fails closed with no partial
// output.
func (m *EnvelopeKeyManager) Decrypt(encoded string, key []byte) (string, *errors.AppError) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.ErrCryptoFailure().WithCause(err)
	}

	plaintext, err := open(blob, key)
	if err != nil {
		return "", errors.ErrCryptoFailure().WithCause(err)
	}
	return string(plaintext), nil
}

// deriveKEK derives the key-encryption key from a password and salt.
func deriveKEK(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keyLength, sha256.New)
}

// seal encrypts plaintext with AES-256-GCM, prepending a fresh random nonce.
func seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a nonce-prefixed AES-256-GCM blob.
func open(blob, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) <= gcm.NonceSize() {
		return nil, errTruncated
	}

	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// zeroize overwrites key material before it is released to the allocator.
func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

var errTruncated = fmt.Errorf("ciphertext shorter than one nonce")
