package storage

import (
	"context"
	"mime/multipart"
)

// MaxFileSize caps individual attachment uploads.
const MaxFileSize = 10 * 1024 * 1024

// StoredFile is the metadata returned by a successful relay.
type StoredFile struct {
	URL      string
	Filename string
	MIMEType string
	Size     int64
}

// Store relays an uploaded file to blob storage. Implementations must
// respect ctx cancellation so a hung upload cannot block request handling.
type Store interface {
	Save(ctx context.Context, file *multipart.FileHeader, folder string) (StoredFile, error)
}

// allowedTypes mirrors the upload allowlist of the public API: images,
// PDFs and office documents.
var allowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
}

// TypeAllowed reports whether the MIME type may be relayed.
func TypeAllowed(mimeType string) bool {
	return allowedTypes[mimeType]
}
