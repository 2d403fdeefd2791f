package codec

import (
	"image"

	"github.com/nfnt/resize"
)

// fitWithin returns the dimensions of a w x h image scaled down so its longer
// side equals limit. The shorter side is truncated but never below one pixel.
// Images that already fit are returned unchanged.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	// Scale by the longer side
	if w >= h {
		return limit, clampPixel(h * limit / w)
	}
	return clampPixel(w * limit / h), limit
}

func clampPixel(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// downscale resizes img with Lanczos3 so its longer side fits limit.
func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), limit)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	// Resize using Lanczos3 for high quality
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
}
