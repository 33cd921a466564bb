package vaultcipher

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// KeyPair is an X25519 key pair used by the asymmetric demonstration. The
// request path never decrypts with PrivateKey.
type KeyPair struct {
	PublicKey  *[32]byte
	PrivateKey *[32]byte
}

// GenerateKeyPair creates a fresh key pair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyPair{PublicKey: pub, PrivateKey: priv}, nil
}

// Seal encrypts msg to the pair's public key with an anonymous sender.
func (kp *KeyPair) Seal(msg []byte) ([]byte, error) {
	sealed, err := box.SealAnonymous(nil, msg, kp.PublicKey, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return sealed, nil
}

// Open decrypts a message produced by Seal.
func (kp *KeyPair) Open(sealed []byte) ([]byte, error) {
	msg, ok := box.OpenAnonymous(nil, sealed, kp.PublicKey, kp.PrivateKey)
	if !ok {
		return nil, errors.New("open sealed box: authentication failed")
	}
	return msg, nil
}
