// Package session holds the permanent key of the web client and derives
// the relay endpoint from it.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// KeyLength is the length of NaCl public and secret keys.
const KeyLength = 32

var (
	ErrInvalidKeyLength = fmt.Errorf("key must be %d bytes", KeyLength)
	ErrDecrypt          = errors.New("message authentication failed")
)

// KeyStore is a NaCl box key pair.
type KeyStore struct {
	publicKey [KeyLength]byte
	secretKey [KeyLength]byte
}

// NewKeyStore generates a fresh key pair from rand.Reader.
func NewKeyStore() (*KeyStore, error) {
	return newKeyStore(rand.Reader)
}

func newKeyStore(r io.Reader) (*KeyStore, error) {
	public, secret, err := box.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return &KeyStore{publicKey: *public, secretKey: *secret}, nil
}

// RestoreKeyStore recreates a key pair from its secret key.
func RestoreKeyStore(secretKey []byte) (*KeyStore, error) {
	if len(secretKey) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	public, err := curve25519.X25519(secretKey, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	ks := &KeyStore{}
	copy(ks.secretKey[:], secretKey)
	copy(ks.publicKey[:], public)
	return ks, nil
}

// RestoreKeyStoreHex is RestoreKeyStore for a hex encoded secret key.
func RestoreKeyStoreHex(secretKeyHex string) (*KeyStore, error) {
	secret, err := hex.DecodeString(secretKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	return RestoreKeyStore(secret)
}

// PublicKey returns a copy of the public key.
func (k *KeyStore) PublicKey() []byte {
	return append([]byte(nil), k.publicKey[:]...)
}

// PublicKeyHex returns the lowercase hex encoding of the public key.
func (k *KeyStore) PublicKeyHex() string {
	return hex.EncodeToString(k.publicKey[:])
}

// SecretKeyHex returns the secret key for persisting the session.
func (k *KeyStore) SecretKeyHex() string {
	return hex.EncodeToString(k.secretKey[:])
}

// Seal encrypts message for peer. The random nonce is prepended to the box.
func (k *KeyStore) Seal(message, peerPublicKey []byte) ([]byte, error) {
	peer, err := toKey(peerPublicKey)
	if err != nil {
		return nil, err
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return box.Seal(nonce[:], message, &nonce, peer, &k.secretKey), nil
}

// Open decrypts a box produced by Seal on the peer's side.
func (k *KeyStore) Open(sealed, peerPublicKey []byte) ([]byte, error) {
	peer, err := toKey(peerPublicKey)
	if err != nil {
		return nil, err
	}
	if len(sealed) < 24+box.Overhead {
		return nil, ErrDecrypt
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	out, ok := box.Open(nil, sealed[24:], &nonce, peer, &k.secretKey)
	if !ok {
		return nil, ErrDecrypt
	}
	return out, nil
}

func toKey(b []byte) (*[KeyLength]byte, error) {
	if len(b) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	var key [KeyLength]byte
	copy(key[:], b)
	return &key, nil
}
