//go:build heif

package codec

import (
	"bytes"
	"image"

	"github.com/jdeng/goheif"
)

// HEIFSupported reports whether this binary can decode HEIF content.
const HEIFSupported = true

func decodeHEIF(data []byte) (image.Image, error) {
	return goheif.Decode(bytes.NewReader(data))
}

func heifEXIF(data []byte) ([]byte, error) {
	return goheif.ExtractExif(bytes.NewReader(data))
}
