package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"

	"github.com/pion/stun/v3"
	"github.com/sardine-ai/go-webclient/model"
	"golang.org/x/mod/semver"
)

// ServerKeyLength is the size of the relay's permanent public key.
const ServerKeyLength = 32

// Validate checks the configuration and reports every problem at once.
func Validate(cfg model.Config) error {
	var errs []error

	if cfg.SaltyRTCPort < 1 || cfg.SaltyRTCPort > 65535 {
		errs = append(errs, fmt.Errorf("SALTYRTC_PORT: %d out of range", cfg.SaltyRTCPort))
	}
	if cfg.SaltyRTCHost == "" && cfg.SaltyRTCHostPrefix == "" && cfg.SaltyRTCHostSuffix == "" {
		errs = append(errs, errors.New("SALTYRTC_HOST: host or prefix/suffix required"))
	}
	if cfg.SaltyRTCServerKey != "" {
		key, err := hex.DecodeString(cfg.SaltyRTCServerKey)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("SALTYRTC_SERVER_KEY: %w", err))
		case len(key) != ServerKeyLength:
			errs = append(errs, fmt.Errorf("SALTYRTC_SERVER_KEY: expected %d bytes, got %d", ServerKeyLength, len(key)))
		}
	}

	for i, server := range cfg.ICEServers {
		if len(server.URLs) == 0 {
			errs = append(errs, fmt.Errorf("ICE_SERVERS[%d]: no urls", i))
		}
		for _, raw := range server.URLs {
			uri, err := stun.ParseURI(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("ICE_SERVERS[%d]: %q: %w", i, raw, err))
				continue
			}
			isTurn := uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS
			if isTurn && (server.Username == "" || server.Credential == "") {
				errs = append(errs, fmt.Errorf("ICE_SERVERS[%d]: %q: TURN needs username and credential", i, raw))
			}
		}
	}

	if cfg.PushURL != "" {
		u, err := url.Parse(cfg.PushURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("PUSH_URL: %w", err))
		} else if u.Scheme != "https" && u.Scheme != "http" {
			errs = append(errs, fmt.Errorf("PUSH_URL: unsupported scheme %q", u.Scheme))
		}
	}

	if cfg.PrevProtocolLastVersion != "" && !semver.IsValid("v"+cfg.PrevProtocolLastVersion) {
		errs = append(errs, fmt.Errorf("PREV_PROTOCOL_LAST_VERSION: %q is not a version", cfg.PrevProtocolLastVersion))
	}

	return errors.Join(errs...)
}
