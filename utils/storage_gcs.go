package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps uploads in a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// ADC unless explicit credentials are provided
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Store(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	if err := checkObjectName(folder, filename); err != nil {
		return "", err
	}
	objectKey := path.Join(folder, filename)
	wc := s.client.Bucket(s.bucket).Object(objectKey).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload file to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}
	return BuildObjectAccessURL(s.bucket, objectKey), nil
}

func (s *GCSStore) Delete(ctx context.Context, fileURL string) error {
	objectKey := ExtractObjectKeyFromURL(s.bucket, fileURL)
	if objectKey == "" {
		return fmt.Errorf("cannot resolve object key from %q", fileURL)
	}
	err := s.client.Bucket(s.bucket).Object(objectKey).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
