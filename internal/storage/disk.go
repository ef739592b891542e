package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DiskStore writes attachments under a base directory and exposes them via
// a public URL prefix. It stands in for the hosted blob store in
// self-contained deployments.
type DiskStore struct {
	baseDir   string
	publicURL string
}

func NewDiskStore(baseDir, publicURL string) *DiskStore {
	return &DiskStore{baseDir: baseDir, publicURL: publicURL}
}

func (s *DiskStore) Save(ctx context.Context, file *multipart.FileHeader, folder string) (StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	if file.Size > MaxFileSize {
		return StoredFile{}, fmt.Errorf("file %s exceeds size limit", file.Filename)
	}

	mimeType := file.Header.Get("Content-Type")
	if !TypeAllowed(mimeType) {
		return StoredFile{}, fmt.Errorf("file type %s not allowed", mimeType)
	}

	// uuid prefix keeps keys unique without trusting client filenames
	key := filepath.Join(folder, uuid.NewString()+"-"+filepath.Base(file.Filename))
	fullPath := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create blob file: %w", err)
	}
	defer dst.Close()

	if err := ctx.Err(); err != nil {
		return StoredFile{}, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(fullPath)
		return StoredFile{}, fmt.Errorf("failed to write blob file: %w", err)
	}

	return StoredFile{
		URL:      s.publicURL + "/" + filepath.ToSlash(key),
		Filename: file.Filename,
		MIMEType: mimeType,
		Size:     file.Size,
	}, nil
}
