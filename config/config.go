// Package config loads the web client configuration once per process and
// hands out read-only copies of it.
package config

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/source"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyInitialized is returned by Init after the first success.
	ErrAlreadyInitialized = errors.New("config already initialized")
	// ErrNotLoaded is returned when a repository has no configuration.
	ErrNotLoaded = errors.New("config not loaded")
)

var (
	mu      sync.RWMutex
	current *model.Config
)

// Load refreshes repo once, validates the result and returns it.
func Load(ctx context.Context, repo source.Repository) (model.Config, error) {
	if err := repo.Refresh(ctx); err != nil {
		return model.Config{}, fmt.Errorf("refresh %s: %w", repo.GetName(), err)
	}
	cfg, ok := repo.GetConfig()
	if !ok {
		return model.Config{}, ErrNotLoaded
	}
	if err := Validate(cfg); err != nil {
		return model.Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"source":      repo.GetName(),
		"self_hosted": cfg.SelfHosted,
		"ice_servers": len(cfg.ICEServers),
	}).Info("configuration loaded")
	return cfg, nil
}

// Init installs cfg as the process-wide configuration. It succeeds once.
func Init(cfg model.Config) error {
	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		return ErrAlreadyInitialized
	}
	frozen := cfg.Clone()
	current = &frozen
	return nil
}

// Get returns a copy of the process-wide configuration, or the defaults
// when Init has not been called.
func Get() model.Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return model.DefaultConfig()
	}
	return current.Clone()
}

// reset clears the process-wide configuration. Tests only.
func reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}
