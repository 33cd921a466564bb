// Package vaultcipher implements the Cipher port and the process-wide key
// provisioning that backs it.
package vaultcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Compile-time interface satisfaction check.
var _ driven.Cipher = (*AESGCM)(nil)

// AESGCM encrypts passwords with AES-256-GCM. Ciphertexts are base64-encoded
// nonce (12 bytes) || ciphertext || tag.
type AESGCM struct {
	gcm cipher.AEAD
}

// NewAESGCM creates an AESGCM cipher. key must be exactly KeySize bytes.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aes-256-gcm key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &AESGCM{gcm: gcm}, nil
}

// Name returns "aesgcm".
func (c *AESGCM) Name() string { return "aesgcm" }

// Encrypt seals plaintext under a fresh random nonce.
func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. A value sealed under another key
// fails with driven.ErrDecrypt.
func (c *AESGCM) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: gcm.Open: %v", driven.ErrDecrypt, err)
	}

	return string(plaintext), nil
}
