package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned by Get when the key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage stores document bytes under opaque keys. Database rows keep
// the key, never a filesystem path or URL.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey returns prefix/<uuid><ext> for the given original filename
func NewObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	if prefix == "" {
		return name
	}
	return path.Join(strings.Trim(prefix, "/"), name)
}

// UploadedObject describes an upload stored by SaveUpload
type UploadedObject struct {
	Key      string
	Size     int64
	MimeType string
	Filename string
}

// SaveUpload copies a multipart file into storage under prefix
func SaveUpload(ctx context.Context, store ObjectStorage, fileHeader *multipart.FileHeader, prefix string) (*UploadedObject, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mimeType := DetectMimeType(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	key := NewObjectKey(prefix, fileHeader.Filename)
	if err := store.Put(ctx, key, file, fileHeader.Size, mimeType); err != nil {
		return nil, err
	}

	return &UploadedObject{
		Key:      key,
		Size:     fileHeader.Size,
		MimeType: mimeType,
		Filename: filepath.Base(fileHeader.Filename),
	}, nil
}

// DetectMimeType prefers the declared content type, then the extension
func DetectMimeType(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil {
			return mt
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}
	return "application/octet-stream"
}
