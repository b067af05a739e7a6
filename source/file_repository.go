package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileRepository reads the configuration document from a local YAML file.
type FileRepository struct {
	snapshot
	Name string // Name of the configuration source
	Path string // File path of the YAML configuration file
}

// NewFileRepository creates a FileRepository for the given path. Relative
// paths are made absolute.
func NewFileRepository(name, path string) (*FileRepository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		logrus.WithError(err).Error("error getting absolute path")
		return nil, err
	}
	return &FileRepository{Name: name, Path: absPath}, nil
}

// GetName returns the name of the configuration source.
func (f *FileRepository) GetName() string {
	return f.Name
}

// GetURL returns the file URL of the configuration document.
func (f *FileRepository) GetURL() *url.URL {
	return &url.URL{Scheme: "file", Path: f.Path}
}

// Refresh reads the YAML file and decodes it.
func (f *FileRepository) Refresh(_ context.Context) error {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		logrus.Debug("error reading file")
		return fmt.Errorf("read %s: %w", f.Path, err)
	}
	if err := f.store(data); err != nil {
		logrus.Debug("error unmarshalling file")
		return err
	}
	return nil
}
