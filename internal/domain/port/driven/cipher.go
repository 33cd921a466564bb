package driven

import "errors"

// ErrDecrypt is returned when a ciphertext cannot be opened, typically because
// it was sealed under a different key.
var ErrDecrypt = errors.New("decrypt failed")

// Cipher transforms passwords before they reach a CredentialStore.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	// Name identifies the variant for logging ("aesgcm", "plaintext").
	Name() string
}
