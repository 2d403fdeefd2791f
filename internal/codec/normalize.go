package codec

import (
	"image"
	"image/draw"
)

// flatten converts images JPEG cannot represent directly (alpha channel,
// palette) to opaque RGBA composited over white. Other images pass through.
func flatten(img image.Image) image.Image {
	if !needsFlatten(img) {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	// Fill with white, then composite the source over it
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func needsFlatten(img image.Image) bool {
	switch im := img.(type) {
	case *image.Paletted:
		return true
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	case interface{ Opaque() bool }:
		return !im.Opaque()
	default:
		return true
	}
}
