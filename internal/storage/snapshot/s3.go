package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint overrides the service endpoint (MinIO and friends).
	Endpoint string

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string
	SecretKey string

	UsePathStyle bool
}

// ObjectAPI is the subset of the S3 client used by S3Backend.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// S3Backend keeps the snapshot as a single object. PutObject replaces an
// object atomically, so readers see either the old or the new blob.
type S3Backend struct {
	api    ObjectAPI
	bucket string
	key    string
}

// NewS3Backend creates a backend storing prefix/DefaultFileName in bucket.
func NewS3Backend(api ObjectAPI, bucket, prefix string) (*S3Backend, error) {
	if bucket == "" {
		return nil, fmt.Errorf("snapshot: s3 bucket is required")
	}
	return &S3Backend{
		api:    api,
		bucket: bucket,
		key:    path.Join(prefix, DefaultFileName),
	}, nil
}

// Name implements Backend.
func (b *S3Backend) Name() string { return "s3" }

// Location implements Backend.
func (b *S3Backend) Location() string { return "s3://" + b.bucket + "/" + b.key }

// Read implements Backend.
func (b *S3Backend) Read(ctx context.Context) ([]byte, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("snapshot: s3 get %s: %w", b.Location(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot: s3 read body: %w", err)
	}
	return data, nil
}

// Write implements Backend.
func (b *S3Backend) Write(ctx context.Context, blob []byte) error {
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.key),
		Body:          bytes.NewReader(blob),
		ContentLength: aws.Int64(int64(len(blob))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("snapshot: s3 put %s: %w", b.Location(), err)
	}
	return nil
}
