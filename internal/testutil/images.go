// Package testutil generates image fixtures for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// Checkerboard returns a w x h image filled with bg and overlaid with a
// black/white 50px checker pattern, so resized output is visually distinct.
func Checkerboard(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/50+y/50)%2 == 0 {
				continue
			}
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
	return img
}

// Noise returns a w x h image of random pixels. JPEG compresses it poorly,
// which makes it handy for producing fixtures of a predictable large size.
func Noise(w, h int, seed int64) *image.RGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// EncodeJPEG returns img encoded as JPEG at quality 90.
func EncodeJPEG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// EncodePNG returns img encoded as PNG.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// WriteJPEG saves a w x h checkerboard JPEG as dir/name.
func WriteJPEG(t testing.TB, dir, name string, w, h int) string {
	t.Helper()
	return WriteFile(t, dir, name, EncodeJPEG(t, Checkerboard(w, h, color.RGBA{200, 40, 40, 255})))
}

// WritePNG saves a w x h checkerboard PNG as dir/name.
func WritePNG(t testing.TB, dir, name string, w, h int) string {
	t.Helper()
	return WriteFile(t, dir, name, EncodePNG(t, Checkerboard(w, h, color.RGBA{40, 40, 200, 255})))
}

// TIFFOrientation builds a minimal big-endian TIFF block whose IFD0 holds a
// single orientation entry.
func TIFFOrientation(o uint16) []byte {
	return []byte{
		'M', 'M', 0x00, 0x2A, // byte order, magic
		0x00, 0x00, 0x00, 0x08, // IFD0 offset
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, // tag 0x0112, type SHORT
		0x00, 0x00, 0x00, 0x01, // count
		byte(o >> 8), byte(o), 0x00, 0x00, // value
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
}

// WithEXIF inserts tiff as an EXIF APP1 segment right after the JPEG SOI.
func WithEXIF(jpegData, tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	n := len(payload) + 2
	out := append([]byte{}, jpegData[:2]...)
	out = append(out, 0xFF, 0xE1, byte(n>>8), byte(n))
	out = append(out, payload...)
	return append(out, jpegData[2:]...)
}
