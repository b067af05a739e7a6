// Package client watches a configuration repository after startup. The
// loaded configuration never changes in-process; the watcher only reports
// that the source has drifted and a restart is needed to pick it up.
package client

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/source"
	"github.com/sirupsen/logrus"
)

var minRefreshInterval = 5 * time.Second

type Watcher struct {
	Repository      source.Repository
	RefreshInterval time.Duration
	// OnChange is called with the new configuration each time the source
	// differs from the last reported state.
	OnChange func(model.Config)

	log      logrus.FieldLogger
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
	baseline model.Config
}

// NewWatcher starts refreshing repository in the background and compares
// every result against baseline.
func NewWatcher(ctx context.Context, repository source.Repository, refreshInterval time.Duration, baseline model.Config, onChange func(model.Config)) *Watcher {
	log := logrus.WithFields(logrus.Fields{"component": "ConfigWatcher", "source": repository.GetName()})
	if refreshInterval < minRefreshInterval {
		log.Warnf("refresh interval too low, setting it to %s", minRefreshInterval)
		refreshInterval = minRefreshInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		Repository:      repository,
		RefreshInterval: refreshInterval,
		OnChange:        onChange,
		log:             log,
		cancel:          cancel,
		done:            make(chan struct{}),
		baseline:        baseline.Clone(),
	}
	go w.refresh(ctx)
	return w
}

func (w *Watcher) refresh(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	if err := w.Repository.Refresh(ctx); err != nil {
		w.log.WithError(err).Error("error refreshing repository")
		return
	}
	cfg, ok := w.Repository.GetConfig()
	if !ok {
		return
	}

	w.mu.Lock()
	changed := !reflect.DeepEqual(cfg, w.baseline)
	if changed {
		w.baseline = cfg.Clone()
	}
	w.mu.Unlock()

	if !changed {
		return
	}
	w.log.Warn("configuration source changed, restart to apply")
	if w.OnChange != nil {
		w.OnChange(cfg)
	}
}

// Close stops the background refresh and waits for it to return.
func (w *Watcher) Close() {
	w.cancel()
	<-w.done
}
