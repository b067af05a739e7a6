package source

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AwsS3Repository reads the configuration document from an S3 object.
type AwsS3Repository struct {
	snapshot
	Name       string     // Name of the configuration source
	BucketName string     // Name of the S3 bucket
	ObjectName string     // Key of the YAML document within the bucket
	Region     string     // Optional region override
	AccessKey  string     // Optional static access key, default chain when empty
	SecretKey  string     // Secret belonging to AccessKey
	Client     *s3.Client // S3 client, created from the default config when nil

	clientOnce    sync.Once // Ensures client is initialized only once
	clientInitErr error     // Stores error from client initialization
}

// Refresh downloads the S3 object and decodes it.
func (a *AwsS3Repository) Refresh(ctx context.Context) error {
	if a.Client == nil {
		a.clientOnce.Do(func() {
			var opts []func(*config.LoadOptions) error
			if a.Region != "" {
				opts = append(opts, config.WithRegion(a.Region))
			}
			if a.AccessKey != "" {
				opts = append(opts, config.WithCredentialsProvider(
					credentials.NewStaticCredentialsProvider(a.AccessKey, a.SecretKey, ""),
				))
			}
			cfg, err := config.LoadDefaultConfig(ctx, opts...)
			if err != nil {
				a.clientInitErr = fmt.Errorf("failed to load AWS config: %w", err)
				return
			}
			a.Client = s3.NewFromConfig(cfg)
		})
		if a.clientInitErr != nil {
			return a.clientInitErr
		}
	}

	result, err := a.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.BucketName),
		Key:    aws.String(a.ObjectName),
	})
	if err != nil {
		return fmt.Errorf("get s3://%s/%s: %w", a.BucketName, a.ObjectName, err)
	}
	defer result.Body.Close()

	content, err := io.ReadAll(result.Body)
	if err != nil {
		return err
	}
	return a.store(content)
}

// GetName returns the name of the configuration source.
func (a *AwsS3Repository) GetName() string {
	return a.Name
}
