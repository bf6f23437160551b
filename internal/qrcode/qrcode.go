// Package qrcode renders scannable item codes as PNG images.
package qrcode

import (
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the rendered image width and height in pixels.
const DefaultSize = 200

// Generator renders QR codes with a fixed size and error correction level.
type Generator struct {
	Size  int
	Level goqrcode.RecoveryLevel
}

// NewGenerator returns a Generator producing DefaultSize images with medium
// error correction.
func NewGenerator() *Generator {
	return &Generator{Size: DefaultSize, Level: goqrcode.Medium}
}

// PNG encodes content as a PNG QR code.
func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("encoding qr code: empty content")
	}
	data, err := goqrcode.Encode(content, g.Level, g.Size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return data, nil
}

// Payload builds the text embedded in an item's code: the unique id and a
// deep link to the item page, separated by "|".
func Payload(uniqueID, baseURL string) string {
	return uniqueID + "|" + DeepLink(uniqueID, baseURL)
}

// DeepLink returns the client URL of an item's detail page.
func DeepLink(uniqueID, baseURL string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return baseURL + "/item/" + uniqueID
}
