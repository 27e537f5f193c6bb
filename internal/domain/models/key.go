package models

import "time"

// UserKeyMaterial is the per-user envelope-encryption record: the salt the
// key-encryption key is derived from and the wrapped data-encryption key.
// Exactly one record exists per user, created at registration and updated
// only by key rotation. The plaintext DEK and the KEK never appear here.
type UserKeyMaterial struct {
	// Salt is the base64-encoded random salt (32 raw bytes).
	Salt string `json:"salt"`
	// WrappedKey is the base64-encoded wrapped DEK, nonce-prefixed.
	WrappedKey string `json:"wrapped_key"`
	// CreatedAt is when the key was provisioned.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is set when the key is rotated.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
