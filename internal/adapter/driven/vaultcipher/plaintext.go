package vaultcipher

import "github.com/ericfisherdev/quantumvault/internal/domain/port/driven"

var _ driven.Cipher = Plaintext{}

// Plaintext is the passthrough variant: passwords are stored in clear.
type Plaintext struct{}

// Name returns "plaintext".
func (Plaintext) Name() string { return "plaintext" }

// Encrypt returns plaintext unchanged.
func (Plaintext) Encrypt(plaintext string) (string, error) { return plaintext, nil }

// Decrypt returns ciphertext unchanged.
func (Plaintext) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }
