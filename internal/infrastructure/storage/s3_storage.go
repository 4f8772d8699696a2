// Package storage writes CSV exports to S3-compatible object storage or to
// the local filesystem.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/homecooks/profitability/internal/infrastructure/config"
)

// Storage errors
var (
	ErrBucketRequired = errors.New("storage: bucket is required")
	ErrNameRequired   = errors.New("storage: object name is required")
)

// S3Exporter uploads export files to a bucket. It works with AWS S3 and
// S3-compatible stores (MinIO, RustFS) through a custom endpoint.
type S3Exporter struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3ExporterOption is a functional option for configuring S3Exporter
type S3ExporterOption func(*S3Exporter)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ExporterOption {
	return func(s *S3Exporter) {
		s.logger = logger
	}
}

// WithPresignExpiration sets how long download links stay valid
func WithPresignExpiration(d time.Duration) S3ExporterOption {
	return func(s *S3Exporter) {
		s.presignExpiration = d
	}
}

// NewS3Exporter creates an exporter from configuration. Without static keys
// the default AWS credential chain is used.
func NewS3Exporter(ctx context.Context, cfg config.ExportConfig, opts ...S3ExporterOption) (*S3Exporter, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	exporter := &S3Exporter{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            cfg.Prefix,
		presignExpiration: 24 * time.Hour,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(exporter)
	}

	return exporter, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3Exporter) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating export bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Key returns the object key for an export file name
func (s *S3Exporter) Key(name string) string {
	return path.Join(s.prefix, name)
}

// Export uploads data under prefix/name and returns its s3:// location
func (s *S3Exporter) Export(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if name == "" {
		return "", ErrNameRequired
	}
	key := s.Key(name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	location := "s3://" + s.bucket + "/" + key
	s.logger.Info("Export uploaded",
		zap.String("location", location),
		zap.Int("bytes", len(data)),
	)
	return location, nil
}

// DownloadURL returns a presigned GET link for an exported file
func (s *S3Exporter) DownloadURL(ctx context.Context, name string, expiresIn time.Duration) (string, time.Time, error) {
	if name == "" {
		return "", time.Time{}, ErrNameRequired
	}
	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(name)),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// Bucket returns the bucket name
func (s *S3Exporter) Bucket() string {
	return s.bucket
}
