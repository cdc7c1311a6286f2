package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store is an S3-backed Store. Bucket and prefix come from the opened
// URL's host and path (s3://bucket/prefix); credentials and region are
// resolved through the default AWS config chain, with no embedded
// secrets.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store loads the default AWS config and returns an S3Store scoped
// to bucket/prefix.
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *S3Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

// Put writes body to bucket/key in full, replacing any existing object.
func (s *S3Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("objectstore: s3 put: %w", err)
	}
	return nil
}

// Get reads bucket/key in full.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: s3 get: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: s3 read body: %w", err)
	}
	return data, nil
}

// GetRange reads the [start, end) byte range of bucket/key using an HTTP
// Range header.
func (s *S3Store) GetRange(ctx context.Context, key string, start, end int) ([]byte, error) {
	rangeHeader := fmt.Sprintf("bytes=%d-%d", start, end-1)
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: s3 get range: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: s3 read range body: %w", err)
	}
	return data, nil
}
