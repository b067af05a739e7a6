// Package server exposes the web client configuration and the browser and
// receiver capabilities over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-http-utils/etag"
	"github.com/gorilla/mux"
	"github.com/sardine-ai/go-webclient/browser"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/transport"
	"github.com/sardine-ai/go-webclient/webclient"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Config     model.Config
	Service    *webclient.Service
	AuthKey    string
	log        logrus.FieldLogger
	mu         sync.Mutex
	httpServer *http.Server
}

func NewServer(cfg model.Config, service *webclient.Service, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		Config:  cfg,
		Service: service,
		log:     log.WithField("component", "Server"),
	}
}

// Start serves until Stop is called. It returns nil after a clean stop.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("Starting server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = etag.Handler(s.CreateHandlers(), false)
	if s.AuthKey != "" {
		handler = Auth(handler, s.AuthKey, "/health")
	}
	return handler
}

func (s *Server) CreateHandlers() *mux.Router {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(requestLogger(s.log)))

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/browser", s.handleBrowser).Methods(http.MethodGet, http.MethodHead)

	receivers := r.PathPrefix("/receivers").Subrouter()
	receivers.HandleFunc("/me", s.handleReceiver).Methods(http.MethodGet)
	receivers.HandleFunc("/me", s.handleSaveProfile).Methods(http.MethodPut)
	receivers.HandleFunc("/{type:contact|group}/{id}", s.handleReceiver).Methods(http.MethodGet)
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("error writing response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Config)
}

type browserReport struct {
	Browser                       model.BrowserInfo `json:"browser"`
	SupportsWebrtcTask            bool              `json:"supportsWebrtcTask"`
	SupportsExtendedLocaleCompare bool              `json:"supportsExtendedLocaleCompare"`
	Tasks                         []string          `json:"tasks"`
}

func (s *Server) handleBrowser(w http.ResponseWriter, r *http.Request) {
	svc := browser.NewService(browser.NewStaticEnvironment(r.UserAgent()), s.log)
	defer svc.Close()
	s.writeJSON(w, http.StatusOK, browserReport{
		Browser:                       svc.GetBrowser(),
		SupportsWebrtcTask:            svc.SupportsWebrtcTask(),
		SupportsExtendedLocaleCompare: svc.SupportsExtendedLocaleCompare(),
		Tasks:                         transport.SelectTasks(svc),
	})
}
