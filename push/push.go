// Package push wakes up the phone app through the push relay.
package push

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TokenType is the push service a token belongs to.
type TokenType string

const (
	TokenFCM  TokenType = "fcm"
	TokenAPNS TokenType = "apns"
	TokenHMS  TokenType = "hms"
)

// Version is the protocol version announced to the push relay.
const Version = 3

// DefaultTTL is how long the relay keeps an undelivered push.
const DefaultTTL = 90 * time.Second

var (
	ErrMissingURL   = errors.New("push url is required")
	ErrMissingToken = errors.New("push token is required")
)

// Token identifies the phone at its push service. BundleID and Endpoint
// are only sent for APNs.
type Token struct {
	Type     TokenType
	Value    string
	BundleID string
	Endpoint string
}

// Client sends push requests to the relay at URL.
type Client struct {
	URL        string
	TTL        time.Duration
	HTTPClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a client for the relay at pushURL.
func NewClient(pushURL string, log logrus.FieldLogger) (*Client, error) {
	if pushURL == "" {
		return nil, ErrMissingURL
	}
	if _, err := url.ParseRequestURI(pushURL); err != nil {
		return nil, fmt.Errorf("parse push url: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		URL:        pushURL,
		TTL:        DefaultTTL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.WithField("component", "PushService"),
	}, nil
}

// SessionHash is the hex SHA-256 of the initiator public key. The relay
// only ever sees this hash.
func SessionHash(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])
}

// Form returns the request body for token and the session public key.
func (c *Client) Form(token Token, publicKey []byte) url.Values {
	form := url.Values{}
	form.Set("type", string(token.Type))
	form.Set("token", token.Value)
	form.Set("session", SessionHash(publicKey))
	form.Set("version", strconv.Itoa(Version))
	if token.Type == TokenAPNS {
		if token.BundleID != "" {
			form.Set("bundleid", token.BundleID)
		}
		if token.Endpoint != "" {
			form.Set("endpoint", token.Endpoint)
		}
	}
	if c.TTL > 0 {
		form.Set("ttl", strconv.Itoa(int(c.TTL/time.Second)))
	}
	return form
}

// Send posts a push request. Any non-2xx answer is an error.
func (c *Client) Send(ctx context.Context, token Token, publicKey []byte) error {
	if token.Value == "" {
		return ErrMissingToken
	}
	body := c.Form(token, publicKey).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("Push request failed")
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithField("status", resp.StatusCode).Warn("Push relay rejected request")
		return fmt.Errorf("push relay answered %s", resp.Status)
	}
	c.log.WithField("type", token.Type).Debug("Sent push")
	return nil
}
