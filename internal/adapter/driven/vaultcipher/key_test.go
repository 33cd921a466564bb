package vaultcipher

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionKey_FromConfig(t *testing.T) {
	want, err := GenerateKey()
	require.NoError(t, err)

	key, src, err := ProvisionKey(base64.StdEncoding.EncodeToString(want), "")
	require.NoError(t, err)
	assert.Equal(t, KeySourceConfig, src)
	assert.Equal(t, want, key)
}

func TestProvisionKey_AcceptsURLAlphabet(t *testing.T) {
	want, err := GenerateKey()
	require.NoError(t, err)

	key, _, err := ProvisionKey(base64.URLEncoding.EncodeToString(want), "")
	require.NoError(t, err)
	assert.Equal(t, want, key)
}

func TestProvisionKey_RejectsWrongLength(t *testing.T) {
	_, _, err := ProvisionKey(base64.StdEncoding.EncodeToString([]byte("too short")), "")
	assert.ErrorContains(t, err, "32 bytes")
}

func TestProvisionKey_GeneratesThenReusesKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "vault.key")

	first, src, err := ProvisionKey("", path)
	require.NoError(t, err)
	assert.Equal(t, KeySourceGenerated, src)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, src, err := ProvisionKey("", path)
	require.NoError(t, err)
	assert.Equal(t, KeySourceFile, src)
	assert.Equal(t, first, second)
}

func TestProvisionKey_ConfigWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.key")
	_, _, err := ProvisionKey("", path)
	require.NoError(t, err)

	want, err := GenerateKey()
	require.NoError(t, err)

	key, src, err := ProvisionKey(base64.StdEncoding.EncodeToString(want), path)
	require.NoError(t, err)
	assert.Equal(t, KeySourceConfig, src)
	assert.Equal(t, want, key)
}

func TestProvisionKey_Ephemeral(t *testing.T) {
	a, src, err := ProvisionKey("", "")
	require.NoError(t, err)
	assert.Equal(t, KeySourceEphemeral, src)
	assert.Len(t, a, KeySize)

	b, _, err := ProvisionKey("", "")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestKeyPair_SealOpen(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	sealed, err := kp.Seal([]byte("quantum-safe-ish"))
	require.NoError(t, err)

	msg, err := kp.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "quantum-safe-ish", string(msg))

	other, err := GenerateKeyPair()
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)
}
