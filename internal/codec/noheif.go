//go:build !heif

package codec

import "image"

// HEIFSupported reports whether this binary can decode HEIF content.
const HEIFSupported = false

func decodeHEIF([]byte) (image.Image, error) {
	return nil, errNoHEIF
}

func heifEXIF([]byte) ([]byte, error) {
	return nil, errNoHEIF
}
