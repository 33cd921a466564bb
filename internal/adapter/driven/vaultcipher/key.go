package vaultcipher

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeySource records where the process-wide key came from.
type KeySource string

const (
	KeySourceConfig    KeySource = "config"
	KeySourceFile      KeySource = "file"
	KeySourceGenerated KeySource = "generated"
	KeySourceEphemeral KeySource = "ephemeral"
)

// ParseKey decodes a base64 (standard or URL alphabet) encoded 32-byte key.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		key, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must decode to %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// GenerateKey returns KeySize random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// ProvisionKey produces the process-wide cipher key. Precedence: an explicit
// base64 key, then keyFile (created with mode 0600 if it does not exist), then
// a fresh ephemeral key that is lost on restart.
func ProvisionKey(encoded, keyFile string) ([]byte, KeySource, error) {
	if encoded != "" {
		key, err := ParseKey(encoded)
		if err != nil {
			return nil, "", err
		}
		return key, KeySourceConfig, nil
	}

	if keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err == nil {
			key, err := ParseKey(string(data))
			if err != nil {
				return nil, "", fmt.Errorf("key file %s: %w", keyFile, err)
			}
			return key, KeySourceFile, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("read key file %s: %w", keyFile, err)
		}

		key, err := GenerateKey()
		if err != nil {
			return nil, "", err
		}
		if err := writeKeyFile(keyFile, key); err != nil {
			return nil, "", err
		}
		return key, KeySourceGenerated, nil
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, "", err
	}
	return key, KeySourceEphemeral, nil
}

func writeKeyFile(path string, key []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}
	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	// O_EXCL: an existing key is never overwritten.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create key file %s: %w", path, err)
	}
	if _, err := f.WriteString(encoded); err != nil {
		_ = f.Close()
		return fmt.Errorf("write key file %s: %w", path, err)
	}
	return f.Close()
}
