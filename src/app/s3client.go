package app

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ClientMinio is the slice of the minio client the S3 backend needs.
type ClientMinio interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
}

// S3Storage serves the image bucket from any S3-compatible endpoint. Public
// URLs use the path-style layout, which assumes an anonymous-read bucket
// policy, same as the provider-hosted bucket.
type S3Storage struct {
	endpoint   string
	useSSL     bool
	bucketName string
	client     ClientMinio
}

// NewS3Storage creates an S3Storage backed by a real minio client.
func NewS3Storage(endpoint, accessKeyID, secretAccessKey, bucketName string, useSSL bool) (*S3Storage, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client for %q: %w", endpoint, err)
	}

	return &S3Storage{
		endpoint:   endpoint,
		useSSL:     useSSL,
		bucketName: bucketName,
		client:     minioClient,
	}, nil
}

func (s3 *S3Storage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s3.client.PutObject(ctx,
		s3.bucketName,
		objectPath,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("can not upload %q: %w", objectPath, err)
	}
	return nil
}

func (s3 *S3Storage) PublicURL(objectPath string) string {
	scheme := "http"
	if s3.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s3.endpoint, s3.bucketName, objectPath)
}

func (s3 *S3Storage) Remove(ctx context.Context, objectPath string) error {
	if err := s3.client.RemoveObject(ctx, s3.bucketName, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("can not remove %q: %w", objectPath, err)
	}
	return nil
}

func (s3 *S3Storage) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s3.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("can not list buckets: %w", err)
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}
