// Package s3 stores each key as an object in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aretw0/jotter/pkg/core"
)

// ContentType is set on every stored object.
const ContentType = "application/json"

// Config holds the connection settings of a Medium.
type Config struct {
	// Endpoint overrides the AWS endpoint for S3-compatible services.
	Endpoint string
	// Region is the bucket region; "us-east-1" when empty.
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Prefix is prepended to every object key.
	Prefix string
	// UsePathStyle is required by most S3-compatible servers.
	UsePathStyle bool
}

// Option configures a Medium.
type Option func(*Medium)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Medium) {
		m.logger = logger
	}
}

// WithPrefix prepends prefix to every object key.
func WithPrefix(prefix string) Option {
	return func(m *Medium) {
		m.prefix = prefix
	}
}

// Medium is an S3-backed core.Medium.
type Medium struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// Open builds an S3 client from cfg. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Medium, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 medium: empty bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return New(client, cfg.Bucket, append([]Option{WithPrefix(cfg.Prefix)}, opts...)...), nil
}

// New wraps an existing client.
func New(client *s3.Client, bucket string, opts ...Option) *Medium {
	m := &Medium{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Medium) key(k string) *string {
	return aws.String(m.prefix + k)
}

// EnsureBucket creates the bucket when it does not exist yet.
func (m *Medium) EnsureBucket(ctx context.Context) error {
	_, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(m.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", m.bucket, err)
	}
	if _, err := m.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(m.bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}
	if m.logger != nil {
		m.logger.Info("created bucket", "bucket", m.bucket)
	}
	return nil
}

// Get implements core.Medium.
func (m *Medium) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    m.key(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body %q: %w", key, err)
	}
	return data, nil
}

// Set implements core.Medium.
func (m *Medium) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         m.key(key),
		Body:        bytes.NewReader(value),
		ContentType: aws.String(ContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return nil
}

// Remove implements core.Medium. S3 deletes of absent objects succeed.
func (m *Medium) Remove(ctx context.Context, key string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    m.key(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys, without the prefix.
func (m *Medium) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(m.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key)[len(m.prefix):])
		}
	}
	return keys, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

var _ core.Medium = (*Medium)(nil)
