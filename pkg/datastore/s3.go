package datastore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3BlobStore addresses large item content by reference (§3's "location"
// field) instead of storing bytes inline in the durable store, the
// production-profile home for aws-sdk-go-v2.
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

// S3Config configures the blob store's bucket and endpoint.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UsePathStyle   bool
}

// NewS3BlobStore builds an S3 client from cfg. An empty AccessKey/SecretKey
// falls back to the default AWS credential chain.
func NewS3BlobStore(ctx context.Context, cfg S3Config) (*S3BlobStore, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	if cfg.AccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("datastore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3BlobStore{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads content under key and returns its "location" — an
// s3://bucket/key URI, the opaque value PostgresDataStore keeps in its
// blob_location column.
func (s *S3BlobStore) Put(ctx context.Context, key string, content []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", fmt.Errorf("datastore: s3 put object: %w", err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// Get fetches content previously stored at location (an s3:// URI as
// returned by Put). Location's bucket segment must match this store's
// configured bucket.
func (s *S3BlobStore) Get(ctx context.Context, location string) ([]byte, error) {
	key, err := s.keyFromLocation(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("datastore: s3 get object: %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *S3BlobStore) keyFromLocation(location string) (string, error) {
	prefix := "s3://" + s.bucket + "/"
	if len(location) <= len(prefix) || location[:len(prefix)] != prefix {
		return "", fmt.Errorf("datastore: location %q is not in bucket %q", location, s.bucket)
	}
	return location[len(prefix):], nil
}

// Delete removes the object at location.
func (s *S3BlobStore) Delete(ctx context.Context, location string) error {
	key, err := s.keyFromLocation(location)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("datastore: s3 delete object: %w", err)
	}
	return nil
}
