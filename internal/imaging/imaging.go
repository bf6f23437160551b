// Package imaging validates uploaded item photos and normalizes them to a
// bounded-size JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxUploadBytes is the largest accepted upload.
	MaxUploadBytes = 5 << 20

	// MaxDimension bounds the width and height of stored photos.
	MaxDimension = 1600

	jpegQuality = 85
)

var (
	// ErrTooLarge is returned for uploads over MaxUploadBytes.
	ErrTooLarge = errors.New("image exceeds 5 MB")

	// ErrUnsupportedFormat is returned for anything but JPEG or PNG.
	ErrUnsupportedFormat = errors.New("only JPEG and PNG images are accepted")
)

var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Photo is a normalized image ready for storage.
type Photo struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Normalize reads an uploaded image, checks its real type from the leading
// bytes, shrinks it to fit MaxDimension and re-encodes it as JPEG.
func Normalize(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	if !acceptedTypes[http.DetectContentType(data)] {
		return nil, ErrUnsupportedFormat
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	img := fit(src, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}

	b := img.Bounds()
	return &Photo{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

// fit scales img down, keeping its aspect ratio, so that neither side exceeds
// maxDim. Smaller images are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
