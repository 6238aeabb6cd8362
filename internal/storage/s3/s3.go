package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	internal_errors "github.com/picwall-dev/picwall/internal/errors"
	"github.com/picwall-dev/picwall/internal/hash"
	"github.com/picwall-dev/picwall/internal/service"
	"github.com/picwall-dev/picwall/internal/storage/blob"
)

const defaultContentType = "application/octet-stream"

type Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Storage keeps blobs in an S3-compatible bucket under content-addressed
// object keys. Identical content maps to the same key, so a second Save of
// the same bytes is a no-op.
type Storage struct {
	client *minio.Client
	bucket string
}

var _ service.BlobStorage = (*Storage)(nil)

func New(ctx context.Context, cfg Config) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Storage{client: client, bucket: cfg.Bucket}, nil
}

// Save buffers the content to learn its digest and size up front; PutObject
// needs the size and the object key is derived from the digest.
func (s *Storage) Save(prefix, originalName string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", &internal_errors.StorageError{Op: "save", Location: prefix, Err: err}
	}
	location := blob.Location(prefix, hash.SumBytes(data), blob.Ext(originalName))

	exists, err := s.Exists(location)
	if err != nil {
		return "", err
	}
	if exists {
		return location, nil
	}

	_, err = s.client.PutObject(context.Background(), s.bucket, location,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: defaultContentType})
	if err != nil {
		return "", &internal_errors.StorageError{Op: "save", Location: location, Err: err}
	}
	return location, nil
}

func (s *Storage) Open(location string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(context.Background(), s.bucket, location, minio.GetObjectOptions{})
	if err != nil {
		return nil, &internal_errors.StorageError{Op: "open", Location: location, Err: err}
	}
	// GetObject is lazy; Stat forces the request so a missing key surfaces
	// here instead of on the first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, internal_errors.NotFound("blob")
		}
		return nil, &internal_errors.StorageError{Op: "open", Location: location, Err: err}
	}
	return obj, nil
}

func (s *Storage) Exists(location string) (bool, error) {
	_, err := s.client.StatObject(context.Background(), s.bucket, location, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, &internal_errors.StorageError{Op: "stat", Location: location, Err: err}
	}
	return true, nil
}

func (s *Storage) Delete(location string) error {
	err := s.client.RemoveObject(context.Background(), s.bucket, location, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return &internal_errors.StorageError{Op: "delete", Location: location, Err: err}
	}
	return nil
}

// Walk lists every object key in the bucket, for orphan cleanup.
func (s *Storage) Walk() ([]string, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var locations []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			return nil, &internal_errors.StorageError{Op: "walk", Location: s.bucket, Err: object.Err}
		}
		locations = append(locations, object.Key)
	}
	return locations, nil
}

func (s *Storage) ModTime(location string) (time.Time, error) {
	info, err := s.client.StatObject(context.Background(), s.bucket, location, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return time.Time{}, internal_errors.NotFound("blob")
		}
		return time.Time{}, &internal_errors.StorageError{Op: "stat", Location: location, Err: err}
	}
	return info.LastModified, nil
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
