package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStoreConfig locates an S3-compatible bucket
type ObjectStoreConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// ObjectStore keeps each key as one object in a MinIO/S3 bucket
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectStore connects and makes sure the bucket exists
func NewObjectStore(ctx context.Context, cfg ObjectStoreConfig) (*ObjectStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &ObjectStore{client: cli, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Get downloads the object stored under key
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", classifyObjectError(err))
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", classifyObjectError(err))
	}
	return data, nil
}

// Set uploads value as a JSON object
func (s *ObjectStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object: %w", classifyObjectError(err))
	}
	return nil
}

// Delete removes the object; a missing object is not an error
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", classifyObjectError(err))
	}
	return nil
}

// Clear removes every object under the store prefix
func (s *ObjectStore) Clear(ctx context.Context) error {
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if info.Err != nil {
			return fmt.Errorf("list objects: %w", info.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, info.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("remove object: %w", err)
		}
	}
	return nil
}

// quotaCodes are the S3/MinIO error codes that mean the bucket or drive is full
var quotaCodes = map[string]bool{
	"XMinioAdminBucketQuotaExceeded": true,
	"XMinioStorageFull":              true,
	"QuotaExceeded":                  true,
	"EntityTooLarge":                 true,
}

func classifyObjectError(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey":
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case quotaCodes[resp.Code]:
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	default:
		return err
	}
}
