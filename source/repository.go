package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/sardine-ai/go-webclient/model"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Repository is a source of the web client configuration document.
type Repository interface {
	// GetName returns the name of the configuration source.
	GetName() string
	// Refresh fetches and decodes the configuration document.
	Refresh(ctx context.Context) error
	// GetConfig returns the last decoded configuration. The boolean is
	// false until a Refresh succeeded.
	GetConfig() (model.Config, bool)
}

// Options carries the settings every repository type may need. Unused
// fields are ignored by the selected type.
type Options struct {
	Name   string // Name of the configuration source
	Path   string // File path, object key or path inside a git repository
	URL    string // HTTP or git URL
	Branch string // Git branch
	Bucket string // S3 or GCS bucket
	APIKey string // Optional X-API-Key for the http type
}

var (
	// ErrMissingPath is returned when a repository type needs a path.
	ErrMissingPath = errors.New("path is required")
	// ErrMissingURL is returned when a repository type needs a URL.
	ErrMissingURL = errors.New("URL is required")
	// ErrMissingBucket is returned when a repository type needs a bucket.
	ErrMissingBucket = errors.New("bucket is required")
)

// NewRepository creates a repository of the given type: fs, http, git, s3
// or gcs. Unknown types fall back to fs.
func NewRepository(repoType string, opts Options) (Repository, error) {
	switch repoType {
	case "http":
		if opts.URL == "" {
			return nil, ErrMissingURL
		}
		repo, err := NewWebRepository(opts.Name, opts.URL, opts.APIKey)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "git":
		if opts.URL == "" {
			return nil, ErrMissingURL
		}
		if opts.Path == "" {
			return nil, ErrMissingPath
		}
		u, err := url.Parse(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parse git url: %w", err)
		}
		return &GitRepository{Name: opts.Name, URL: u, Path: opts.Path, Branch: opts.Branch}, nil
	case "s3":
		if opts.Bucket == "" {
			return nil, ErrMissingBucket
		}
		if opts.Path == "" {
			return nil, ErrMissingPath
		}
		return &AwsS3Repository{Name: opts.Name, BucketName: opts.Bucket, ObjectName: opts.Path}, nil
	case "gcs":
		if opts.Bucket == "" {
			return nil, ErrMissingBucket
		}
		if opts.Path == "" {
			return nil, ErrMissingPath
		}
		return &GcpStorageRepository{Name: opts.Name, BucketName: opts.Bucket, ObjectName: opts.Path}, nil
	case "fs":
	default:
		logrus.WithField("repo_type", repoType).Warn("unknown repository type, using fs")
	}
	if opts.Path == "" {
		return nil, ErrMissingPath
	}
	repo, err := NewFileRepository(opts.Name, opts.Path)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Decode parses a YAML configuration document on top of the defaults.
// Keys missing from the document keep their default value, a present
// ICE_SERVERS list replaces the default one.
func Decode(data []byte) (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// snapshot holds the last successfully decoded configuration.
type snapshot struct {
	sync.RWMutex // RWMutex to synchronize access to data during refresh
	config       model.Config
	loaded       bool
}

// store decodes data outside the lock and swaps it in only on success.
func (s *snapshot) store(data []byte) error {
	cfg, err := Decode(data)
	if err != nil {
		return err
	}
	s.Lock()
	s.config = cfg
	s.loaded = true
	s.Unlock()
	return nil
}

// GetConfig returns a copy of the last decoded configuration.
func (s *snapshot) GetConfig() (model.Config, bool) {
	s.RLock()
	defer s.RUnlock()
	if !s.loaded {
		return model.Config{}, false
	}
	return s.config.Clone(), true
}
