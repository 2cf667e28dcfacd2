package utils

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	StorageProviderLocal = "local"
	StorageProviderGCS   = "gcs"
)

// Upload folders, relative to the store root.
const (
	FolderPaginasActuariales = "paginas_actuariales"
	FolderComprobantesPlan   = "comprobantes_plan"
	FolderComprobantesPago   = "comprobantes_pago"
)

// ContentStore persists uploaded files and returns the public URL they are served from.
type ContentStore interface {
	Store(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

func GetStorageProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_PROVIDER")))
	if provider == "" {
		return StorageProviderLocal
	}
	return provider
}

// NewContentStore builds the store selected by STORAGE_PROVIDER.
func NewContentStore(ctx context.Context) (ContentStore, error) {
	switch GetStorageProvider() {
	case StorageProviderLocal:
		dir := os.Getenv("PUBLIC_DIR")
		if dir == "" {
			dir = "public"
		}
		base := os.Getenv("PUBLIC_BASE_URL")
		if base == "" {
			base = "/public"
		}
		return NewLocalStore(dir, base), nil
	case StorageProviderGCS:
		return NewGCSStore(ctx, os.Getenv("GCS_BUCKET"))
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", GetStorageProvider())
	}
}

// LocalStore writes files below Dir and serves them from BaseURL (see the /public static
// route).
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Store(_ context.Context, folder, filename, _ string, data []byte) (string, error) {
	if err := checkObjectName(folder, filename); err != nil {
		return "", err
	}
	target := filepath.Join(s.Dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(target, filename), data, 0o644); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + path.Join(folder, url.PathEscape(filename)), nil
}

func (s *LocalStore) Delete(_ context.Context, fileURL string) error {
	rel := strings.TrimPrefix(fileURL, s.BaseURL+"/")
	if rel == fileURL || strings.Contains(rel, "..") {
		return fmt.Errorf("url %q is not served by this store", fileURL)
	}
	if unescaped, err := url.PathUnescape(rel); err == nil {
		rel = unescaped
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func checkObjectName(folder, filename string) error {
	if folder == "" || filename == "" {
		return errors.New("folder and filename are required")
	}
	if strings.Contains(folder, "..") || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return fmt.Errorf("invalid object name %s/%s", folder, filename)
	}
	return nil
}
