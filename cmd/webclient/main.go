package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sardine-ai/go-webclient/client"
	"github.com/sardine-ai/go-webclient/config"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/push"
	"github.com/sardine-ai/go-webclient/server"
	"github.com/sardine-ai/go-webclient/session"
	"github.com/sardine-ai/go-webclient/source"
	"github.com/sardine-ai/go-webclient/store"
	"github.com/sardine-ai/go-webclient/transport"
	"github.com/sardine-ai/go-webclient/webclient"
	"github.com/sirupsen/logrus"
)

var (
	repoType      = flag.String("repo_type", "fs", "repository type: fs, http, git, s3 or gcs")
	path          = flag.String("path", "", "path to the config file (fs, git) or object name (s3, gcs)")
	url           = flag.String("url", "", "url of the config file (http) or repository (git)")
	branch        = flag.String("branch", "", "git branch")
	bucket        = flag.String("bucket", "", "bucket name (s3, gcs)")
	apiKey        = flag.String("api_key", "", "api key sent to the http config source")
	authKey       = flag.String("auth_key", "", "auth key for the server")
	addr          = flag.String("addr", ":8080", "listen address")
	dbPath        = flag.String("db", "webclient.db", "sqlite database path, empty to keep state in memory")
	secretKey     = flag.String("secret_key", "", "hex encoded session secret key, generated when empty")
	watchInterval = flag.Duration("watch_interval", 0, "interval for checking the config source for changes, 0 disables")
	pushType      = flag.String("push_type", string(push.TokenFCM), "push token type")
	pushToken     = flag.String("push_token", "", "push token of the phone, wakes the app on startup when set")
	logLevel      = flag.String("log_level", "info", "log level")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("webclient stopped")
	}
}

// run wires every component and serves until SIGINT or SIGTERM. Deferred
// cleanups run on every return path.
func run() error {
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := source.NewRepository(*repoType, source.Options{
		Name:   "webclient",
		Path:   *path,
		URL:    *url,
		Branch: *branch,
		Bucket: *bucket,
		APIKey: *apiKey,
	})
	if err != nil {
		return fmt.Errorf("create repository: %w", err)
	}
	cfg, err := config.Load(ctx, repository)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := config.Init(cfg); err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}
	if cfg.Debug && level < logrus.DebugLevel {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if *watchInterval > 0 {
		watcher := client.NewWatcher(ctx, repository, *watchInterval, cfg, nil)
		defer watcher.Close()
	}

	var db webclient.Store
	if *dbPath != "" {
		s, err := store.New(ctx, *dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()
		db = s
	}
	service := webclient.NewService(db, logrus.StandardLogger())
	if err := service.Load(ctx); err != nil {
		return fmt.Errorf("load receivers: %w", err)
	}

	keys, err := newKeyStore(*secretKey)
	if err != nil {
		return fmt.Errorf("create session keys: %w", err)
	}
	announceSession(ctx, cfg, keys)

	srv := server.NewServer(cfg, service, logrus.StandardLogger())
	srv.AuthKey = *authKey

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logrus.WithError(err).Error("error stopping server")
		}
	}()
	if err := srv.Start(*addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func newKeyStore(secretKeyHex string) (*session.KeyStore, error) {
	if secretKeyHex == "" {
		return session.NewKeyStore()
	}
	return session.RestoreKeyStoreHex(secretKeyHex)
}

func announceSession(ctx context.Context, cfg model.Config, keys *session.KeyStore) {
	endpoint := session.NewEndpoint(cfg, keys)
	if _, err := session.ServerKey(cfg); err != nil {
		logrus.WithError(err).Warn("ignoring invalid relay server key")
	}
	iceConfig := transport.ICEConfiguration(cfg, false, logrus.StandardLogger())
	logrus.WithFields(logrus.Fields{
		"relay":       endpoint.URL(),
		"ice_servers": len(iceConfig.ICEServers),
	}).Info("Session ready")

	if *pushToken == "" {
		return
	}
	pusher, err := push.NewClient(cfg.PushURL, logrus.StandardLogger())
	if err != nil {
		logrus.WithError(err).Error("error creating push client")
		return
	}
	token := push.Token{Type: push.TokenType(*pushType), Value: *pushToken}
	if err := pusher.Send(ctx, token, keys.PublicKey()); err != nil {
		logrus.WithError(err).Error("error sending wakeup push")
	}
}
