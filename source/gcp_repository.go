package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GcpStorageRepository reads the configuration document from a GCS object.
type GcpStorageRepository struct {
	snapshot
	Name       string          // Name of the configuration source
	BucketName string          // Name of the GCS bucket
	ObjectName string          // Name of the YAML document within the bucket
	Anonymous  bool            // Read a public object without credentials
	Client     *storage.Client // GCS client, created on first refresh when nil

	clientOnce    sync.Once // Ensures client is initialized only once
	clientInitErr error     // Stores error from client initialization
}

// Refresh downloads the GCS object and decodes it.
func (g *GcpStorageRepository) Refresh(ctx context.Context) error {
	if g.Client == nil {
		g.clientOnce.Do(func() {
			var opts []option.ClientOption
			if g.Anonymous {
				opts = append(opts, option.WithoutAuthentication())
			}
			g.Client, g.clientInitErr = storage.NewClient(ctx, opts...)
		})
		if g.clientInitErr != nil {
			return g.clientInitErr
		}
	}

	reader, err := g.Client.Bucket(g.BucketName).Object(g.ObjectName).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("open gs://%s/%s: %w", g.BucketName, g.ObjectName, err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	return g.store(content)
}

// GetName returns the name of the configuration source.
func (g *GcpStorageRepository) GetName() string {
	return g.Name
}
