package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/files")

	file := makeFileHeader(t, "receipt.png", "image/png", []byte("png-bytes"))

	stored, err := store.Save(context.Background(), file, "requests")
	require.NoError(t, err)

	assert.Equal(t, "receipt.png", stored.Filename)
	assert.Equal(t, "image/png", stored.MIMEType)
	assert.Equal(t, int64(len("png-bytes")), stored.Size)
	assert.True(t, strings.HasPrefix(stored.URL, "/files/requests/"))
	assert.True(t, strings.HasSuffix(stored.URL, "-receipt.png"))

	// the relayed bytes landed under the base dir
	onDisk := filepath.Join(dir, strings.TrimPrefix(stored.URL, "/files/"))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestDiskStoreUniqueKeys(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/files")
	file := makeFileHeader(t, "receipt.pdf", "application/pdf", []byte("pdf"))

	first, err := store.Save(context.Background(), file, "requests")
	require.NoError(t, err)
	second, err := store.Save(context.Background(), file, "requests")
	require.NoError(t, err)

	assert.NotEqual(t, first.URL, second.URL)
}

func TestDiskStoreRejectsOversizeFile(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/files")
	file := makeFileHeader(t, "huge.pdf", "application/pdf", []byte("pdf"))
	file.Size = MaxFileSize + 1

	_, err := store.Save(context.Background(), file, "requests")
	assert.ErrorContains(t, err, "size limit")
}

func TestDiskStoreRejectsDisallowedType(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/files")
	file := makeFileHeader(t, "script.sh", "application/x-sh", []byte("#!/bin/sh"))

	_, err := store.Save(context.Background(), file, "requests")
	assert.ErrorContains(t, err, "not allowed")
}

func TestDiskStoreHonorsCanceledContext(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/files")
	file := makeFileHeader(t, "receipt.png", "image/png", []byte("png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, file, "requests")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTypeAllowed(t *testing.T) {
	assert.True(t, TypeAllowed("image/jpeg"))
	assert.True(t, TypeAllowed("application/pdf"))
	assert.False(t, TypeAllowed("text/html"))
	assert.False(t, TypeAllowed(""))
}
