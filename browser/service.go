// Package browser detects the browser the web client runs in and tracks
// the visibility of its page.
package browser

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
)

// Service answers capability questions about the hosting browser.
type Service struct {
	env Environment
	log logrus.FieldLogger

	browserOnce sync.Once
	browser     model.BrowserInfo

	visible    atomic.Bool
	visibility *VisibilitySubscription

	localeOnce    sync.Once
	localeSupport bool
}

// NewService creates a Service and subscribes to visibility changes of
// env. Call Close to remove the listeners.
func NewService(env Environment, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		env: env,
		log: log.WithField("component", "BrowserService"),
	}
	s.visible.Store(true)
	s.visibility = subscribeVisibility(env, s.visible.Store)
	return s
}

// GetBrowser returns the detected browser. Detection runs once.
func (s *Service) GetBrowser() model.BrowserInfo {
	s.browserOnce.Do(func() {
		s.browser = Detect(s.env.UserAgent())
	})
	return s.browser
}

// IsVisible returns the last known page visibility.
func (s *Service) IsVisible() bool {
	return s.visible.Load()
}

// SupportsWebrtcTask reports whether the browser can run the SaltyRTC
// WebRTC task.
func (s *Service) SupportsWebrtcTask() bool {
	return !s.GetBrowser().Safari
}

// SupportsExtendedLocaleCompare reports whether the locale compare of the
// browser validates its options. An invalid locale must be rejected with a
// range error for the extended options to be honoured.
func (s *Service) SupportsExtendedLocaleCompare() bool {
	s.localeOnce.Do(func() {
		_, err := s.env.LocaleCompare("foo", "bar", "i")
		s.localeSupport = errors.Is(err, ErrRange)
		verb := "does not support"
		if s.localeSupport {
			verb = "supports"
		}
		s.log.Debugf("Browser %s extended locale compare options", verb)
	})
	return s.localeSupport
}

// Visibility returns the visibility subscription of the service.
func (s *Service) Visibility() *VisibilitySubscription {
	return s.visibility
}

// Close removes the visibility listeners.
func (s *Service) Close() {
	s.visibility.Close()
}
