package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// WebRepository fetches the configuration document from an HTTP endpoint.
type WebRepository struct {
	snapshot
	Name   string       // Name of the configuration source
	URL    *url.URL     // URL of the remote YAML document
	APIKey string       // Optional API key for X-API-Key header authentication
	Client *http.Client // HTTP client, http.DefaultClient when nil
}

// NewWebRepository creates a WebRepository for rawURL.
func NewWebRepository(name, rawURL, apiKey string) (*WebRepository, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	return &WebRepository{Name: name, URL: u, APIKey: apiKey}, nil
}

// GetName returns the name of the configuration source.
func (w *WebRepository) GetName() string {
	return w.Name
}

// Refresh downloads the YAML document and decodes it.
func (w *WebRepository) Refresh(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, w.URL.String(), nil)
	if err != nil {
		logrus.Debug("error creating request")
		return err
	}
	if w.APIKey != "" {
		request.Header.Set("X-API-Key", w.APIKey)
	}

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(request)
	if err != nil {
		logrus.Debug("error doing request")
		return err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logrus.WithError(err).Debug("error closing response body")
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", w.URL.Redacted(), resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logrus.Debug("error reading body")
		return err
	}
	return w.store(data)
}
