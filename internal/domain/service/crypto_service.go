package service

import (
	"github.com/passlock/passlock/internal/domain/models"
	"github.com/passlock/passlock/pkg/errors"
)

// EnvelopeService performs envelope encryption for user vault data: a random
// data-encryption key (DEK) per user, wrapped under a key-encryption key (KEK)
// derived from the user's password. Only the salt and the wrapped DEK ever
// leave this boundary; persistence is the caller's responsibility.
//
// Every failure is reported as the single opaque crypto error: callers must
// not be able to distinguish a bad password from a corrupted blob.
type EnvelopeService interface {
	// ProvisionKey generates the salt, derives the KEK from the password,
	// generates a fresh DEK, and returns the salt plus the wrapped DEK.
	ProvisionKey(password string) (*models.UserKeyMaterial, *errors.AppError)

	// UnwrapKey re-derives the KEK and unwraps the DEK.
	UnwrapKey(password, salt, wrappedKey string) ([]byte, *errors.AppError)

	// RotateKey unwraps the DEK with the old password and re-wraps it under
	// a KEK derived from the new password and a fresh salt. The DEK itself
	// is unchanged, so stored payloads remain decryptable.
	RotateKey(oldPassword, newPassword, salt, wrappedKey string) (*models.UserKeyMaterial, *errors.AppError)

	// Encrypt protects a vault payload under the given key. The nonce is
	// always generated internally and prepended to the ciphertext.
	Encrypt(plaintext string, key []byte) (string, *errors.AppError)

	// Decrypt reverses Encrypt. Tampered or malformed input fails closed
	// with no partial output.
	Decrypt(encoded string, key []byte) (string, *errors.AppError)
}
