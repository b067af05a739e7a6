package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreKeyStore(t *testing.T) {
	ks, err := NewKeyStore()
	require.NoError(t, err)

	restored, err := RestoreKeyStoreHex(ks.SecretKeyHex())
	require.NoError(t, err)
	assert.Equal(t, ks.PublicKeyHex(), restored.PublicKeyHex())
	assert.Len(t, ks.PublicKeyHex(), 2*KeyLength)

	_, err = RestoreKeyStore([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
	_, err = RestoreKeyStoreHex("zz")
	assert.Error(t, err)
}

func TestSealOpen(t *testing.T) {
	alice, err := newKeyStore(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	require.NoError(t, err)
	bob, err := NewKeyStore()
	require.NoError(t, err)

	sealed, err := alice.Seal([]byte("hello"), bob.PublicKey())
	require.NoError(t, err)
	plain, err := bob.Open(sealed, alice.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))

	sealed[len(sealed)-1] ^= 0xff
	_, err = bob.Open(sealed, alice.PublicKey())
	assert.ErrorIs(t, err, ErrDecrypt)
	_, err = bob.Open([]byte{1}, alice.PublicKey())
	assert.ErrorIs(t, err, ErrDecrypt)
	_, err = bob.Seal([]byte("x"), []byte{1})
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestNewEndpoint(t *testing.T) {
	ks, err := NewKeyStore()
	require.NoError(t, err)
	public := ks.PublicKeyHex()

	cfg := model.DefaultConfig()
	ep := NewEndpoint(cfg, ks)
	assert.Equal(t, "saltyrtc-"+public[:2]+".threema.ch", ep.Host)
	assert.Equal(t, "wss://"+ep.Host+":443/"+public, ep.URL())

	cfg.SaltyRTCHost = "relay.example.org"
	cfg.SaltyRTCPort = 8765
	ep = NewEndpoint(cfg, ks)
	assert.Equal(t, "wss://relay.example.org:8765/"+public, ep.URL())
}

func TestServerKey(t *testing.T) {
	key, err := ServerKey(model.DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, key, KeyLength)

	key, err = ServerKey(model.Config{})
	assert.NoError(t, err)
	assert.Nil(t, key)

	_, err = ServerKey(model.Config{SaltyRTCServerKey: strings.Repeat("ab", 16)})
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
	_, err = ServerKey(model.Config{SaltyRTCServerKey: "nothex"})
	assert.Error(t, err)
}
