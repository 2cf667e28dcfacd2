package utils_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/utils"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := utils.NewLocalStore(dir, "http://localhost:8080/public/")
	ctx := context.Background()

	fileURL, err := store.Store(ctx, utils.FolderComprobantesPago, "abc.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/public/comprobantes_pago/abc.pdf", fileURL)

	data, err := os.ReadFile(filepath.Join(dir, "comprobantes_pago", "abc.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Delete(ctx, fileURL))
	_, err = os.Stat(filepath.Join(dir, "comprobantes_pago", "abc.pdf"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, fileURL))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := utils.NewLocalStore(t.TempDir(), "/public")
	ctx := context.Background()

	_, err := store.Store(ctx, "comprobantes_pago", "../x.pdf", "application/pdf", []byte("x"))
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, "/public/../../etc/passwd"))
	assert.Error(t, store.Delete(ctx, "https://elsewhere/x.pdf"))
}

func TestNewContentStoreDefaultsToLocal(t *testing.T) {
	t.Setenv("STORAGE_PROVIDER", "")
	t.Setenv("PUBLIC_DIR", t.TempDir())
	store, err := utils.NewContentStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &utils.LocalStore{}, store)

	t.Setenv("STORAGE_PROVIDER", "ftp")
	_, err = utils.NewContentStore(context.Background())
	assert.Error(t, err)
}

func TestObjectAccessURL(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	u := utils.BuildObjectAccessURL("ucond", "comprobantes_pago/a.pdf")
	assert.Equal(t, "https://storage.googleapis.com/ucond/comprobantes_pago/a.pdf", u)
	assert.Equal(t, "comprobantes_pago/a.pdf", utils.ExtractObjectKeyFromURL("ucond", u))
	assert.Equal(t, "", utils.ExtractObjectKeyFromURL("other", u))
	assert.Equal(t, "x/y.pdf", utils.ExtractObjectKeyFromURL("ucond", "gs://ucond/x/y.pdf"))

	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://cdn.example.com/files?key={objectKey}")
	u = utils.BuildObjectAccessURL("ucond", "comprobantes_plan/b c.pdf")
	assert.Equal(t, "https://cdn.example.com/files?key=comprobantes_plan%2Fb+c.pdf", u)
	assert.Equal(t, "comprobantes_plan/b c.pdf", utils.ExtractObjectKeyFromURL("ucond", u))
}
