// Package filestore keeps uploaded photos and generated QR images outside the
// database. Files are addressed by slash-separated keys such as
// "uploads/3f2a….jpg" or "qrcodes/qr_abc.png".
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotExist is returned by Open for unknown keys.
var ErrNotExist = errors.New("file does not exist")

// Key prefixes.
const (
	UploadsDir = "uploads"
	QRCodesDir = "qrcodes"
)

// Store persists files by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// CleanKey validates key and returns it in canonical form. Keys must be
// relative and must not escape the store root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return clean, nil
}
