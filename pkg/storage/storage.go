// Package storage wraps the S3-compatible bucket holding prepared video
// copies.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicBaseURL is the prefix public download links are built from.
	PublicBaseURL string
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.Bucket == "" {
		return errors.New("bucket is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("access_key and secret_key are required")
	}
	return nil
}

// s3Client is an interface for testability.
type s3Client interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, input *s3.DeleteObjectsInput, opts ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Bucket provides streaming download, batch removal, and public URL
// construction for prepared assets.
type Bucket interface {
	Download(ctx context.Context, path string) (io.ReadCloser, int64, error)
	// Remove deletes the given objects in one batch call.
	Remove(ctx context.Context, paths []string) error
	PublicURL(path string) string
}

type bucket struct {
	client        s3Client
	name          string
	publicBaseURL string
}

// New creates a Bucket from the given config.
func New(cfg *Config) (Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}

	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &bucket{
		client:        s3.New(opts),
		name:          cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (b *bucket) Download(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %s: %w", path, err)
	}

	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

func (b *bucket) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, len(paths))
	for i, p := range paths {
		objects[i] = types.ObjectIdentifier{Key: aws.String(p)}
	}

	_, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.name),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("delete %d objects: %w", len(paths), err)
	}
	return nil
}

func (b *bucket) PublicURL(path string) string {
	return b.publicBaseURL + "/" + strings.TrimLeft(path, "/")
}
