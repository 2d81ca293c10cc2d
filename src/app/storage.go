package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ObjectStorage is the image bucket as seen by the HTTP layer. Uploads always
// overwrite an existing object at the same path.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) error
	PublicURL(objectPath string) string
	Remove(ctx context.Context, objectPath string) error
	ListBuckets(ctx context.Context) ([]string, error)
}

const defaultContentType = "application/octet-stream"

// ProviderStorage reaches the bucket through the hosted provider's storage
// REST API. The bucket is assumed public-read, so PublicURL never fails.
type ProviderStorage struct {
	rest   *resty.Client
	base   string
	bucket string
}

func NewProviderStorage(baseURL, serviceKey, bucket string, timeout time.Duration) *ProviderStorage {
	base := strings.TrimRight(baseURL, "/") + "/storage/v1"
	rest := resty.New().
		SetBaseURL(base).
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey).
		SetTimeout(timeout)
	return &ProviderStorage{rest: rest, base: base, bucket: bucket}
}

func (s *ProviderStorage) Upload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/object/%s/%s", s.bucket, objectPath))
	if err != nil {
		return fmt.Errorf("storage provider unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload of %q rejected: %s: %s", objectPath, resp.Status(), resp.String())
	}
	return nil
}

func (s *ProviderStorage) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.base, s.bucket, objectPath)
}

func (s *ProviderStorage) Remove(ctx context.Context, objectPath string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/object/%s/%s", s.bucket, objectPath))
	if err != nil {
		return fmt.Errorf("storage provider unreachable: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("remove of %q rejected: %s", objectPath, resp.Status())
	}
	return nil
}

func (s *ProviderStorage) ListBuckets(ctx context.Context) ([]string, error) {
	buckets := []struct {
		Name string `json:"name"`
	}{}
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&buckets).
		Get("/bucket")
	if err != nil {
		return nil, fmt.Errorf("storage provider unreachable: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bucket listing rejected: %s", resp.Status())
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}
