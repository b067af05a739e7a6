package session

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/sardine-ai/go-webclient/model"
)

// Endpoint is the relay a session connects to.
type Endpoint struct {
	Host string
	Port int
	// Path is the hex encoded public key of the initiator.
	Path string
}

// URL returns the websocket URL of the relay.
func (e Endpoint) URL() string {
	u := url.URL{
		Scheme: "wss",
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   "/" + e.Path,
	}
	return u.String()
}

// NewEndpoint derives the relay endpoint for the key store. A configured
// SALTYRTC_HOST wins; otherwise the host is the prefix, the first byte of
// the public key in hex and the suffix.
func NewEndpoint(cfg model.Config, ks *KeyStore) Endpoint {
	publicKey := ks.PublicKeyHex()
	host := cfg.SaltyRTCHost
	if host == "" {
		host = cfg.SaltyRTCHostPrefix + publicKey[:2] + cfg.SaltyRTCHostSuffix
	}
	return Endpoint{Host: host, Port: cfg.SaltyRTCPort, Path: publicKey}
}

// ServerKey decodes the permanent public key of the relay. An empty key
// yields nil.
func ServerKey(cfg model.Config) ([]byte, error) {
	if cfg.SaltyRTCServerKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(cfg.SaltyRTCServerKey)
	if err != nil {
		return nil, fmt.Errorf("decode server key: %w", err)
	}
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	return key, nil
}
