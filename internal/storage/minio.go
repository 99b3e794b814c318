package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Storage implements Storage against any S3-compatible backend (AWS S3,
// MinIO). Objects are private; reads go through presigned URLs.
type S3Storage struct {
	client        *minio.Client
	bucket        string
	baseURL       string
	presignExpiry time.Duration
}

// S3Options configures NewS3Storage. Region is mandatory. When AccessKey and
// SecretKey are both set they are used as static credentials; otherwise the
// ambient AWS environment credentials apply.
type S3Options struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
}

// NewS3Storage creates the client, verifies the bucket exists (creating it
// when absent), and returns a ready-to-use S3Storage.
func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("storage region is required")
	}

	var creds *credentials.Credentials
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds = credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
	}

	scheme := "https"
	if !opts.UseSSL {
		scheme = "http"
	}

	return &S3Storage{
		client: client,
		bucket: opts.Bucket,
		// Virtual-host style, so the URL path equals the object key.
		baseURL:       fmt.Sprintf("%s://%s.%s", scheme, opts.Bucket, opts.Endpoint),
		presignExpiry: opts.PresignExpiry,
	}, nil
}

// Upload stores reader under folder/<uuid>_<filename> and returns the
// object's access URL, which is what callers persist as the reference.
func (s *S3Storage) Upload(ctx context.Context, folder, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	key := folder + "/" + uuid.NewString() + "_" + filename
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %q: %v", ErrStorage, key, err)
	}
	return s.baseURL + "/" + key, nil
}

// PresignedURL resolves the reference and issues a time-limited GET URL.
func (s *S3Storage) PresignedURL(ctx context.Context, ref string) (string, error) {
	key, err := ResolveKey(ref)
	if err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: presign object %q: %v", ErrStorage, key, err)
	}
	return u.String(), nil
}

// Delete resolves the reference and removes the object. Deleting an absent
// key is not distinguished from other backend outcomes.
func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	key, err := ResolveKey(ref)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove object %q: %v", ErrStorage, key, err)
	}
	return nil
}
