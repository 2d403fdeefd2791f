package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"batchOptimize/internal/testutil"
)

func defaultOptions() Options {
	return Options{Quality: 85, MaxDimension: 1920, AutoOrient: true}
}

func decodeJPEGFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	return img
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name        string
		w, h, limit int
		wantW       int
		wantH       int
	}{
		{"landscape", 4000, 3000, 1920, 1920, 1440},
		{"portrait", 3000, 4000, 1920, 1440, 1920},
		{"square", 2500, 2500, 1920, 1920, 1920},
		{"already fits", 800, 600, 1920, 800, 600},
		{"exact fit", 1920, 1080, 1920, 1920, 1080},
		{"truncated short side", 1000, 333, 500, 500, 166},
		{"thin strip keeps one pixel", 10000, 1, 100, 100, 1},
		{"no limit", 5000, 5000, 0, 5000, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitWithin(tt.w, tt.h, tt.limit)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestProcessDimensions(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxDim     int
		wantW      int
		wantH      int
		writeAsPNG bool
	}{
		{name: "landscape jpeg", w: 400, h: 300, maxDim: 200, wantW: 200, wantH: 150},
		{name: "portrait png", w: 300, h: 400, maxDim: 200, wantW: 150, wantH: 200, writeAsPNG: true},
		{name: "small image untouched", w: 120, h: 80, maxDim: 200, wantW: 120, wantH: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := t.TempDir(), t.TempDir()
			var src string
			if tt.writeAsPNG {
				src = testutil.WritePNG(t, in, "img.png", tt.w, tt.h)
			} else {
				src = testutil.WriteJPEG(t, in, "img.jpg", tt.w, tt.h)
			}
			dst := filepath.Join(out, filepath.Base(src))

			opts := defaultOptions()
			opts.MaxDimension = tt.maxDim
			res, err := Process(src, dst, opts)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if res.Width != tt.wantW || res.Height != tt.wantH {
				t.Errorf("result dims = %dx%d, want %dx%d", res.Width, res.Height, tt.wantW, tt.wantH)
			}
			if res.SourceWidth != tt.w || res.SourceHeight != tt.h {
				t.Errorf("source dims = %dx%d, want %dx%d", res.SourceWidth, res.SourceHeight, tt.w, tt.h)
			}

			img := decodeJPEGFile(t, dst)
			if b := img.Bounds(); b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("written dims = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}

			fi, err := os.Stat(src)
			if err != nil {
				t.Fatal(err)
			}
			if res.OriginalBytes != fi.Size() {
				t.Errorf("OriginalBytes = %d, want %d", res.OriginalBytes, fi.Size())
			}
			fo, err := os.Stat(dst)
			if err != nil {
				t.Fatal(err)
			}
			if res.OptimizedBytes != fo.Size() {
				t.Errorf("OptimizedBytes = %d, want %d", res.OptimizedBytes, fo.Size())
			}
		})
	}
}

func TestProcessKeepsDestinationName(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := testutil.WritePNG(t, in, "shot.png", 64, 48)
	dst := filepath.Join(out, "shot.png")

	res, err := Process(src, dst, defaultOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Format != "png" {
		t.Errorf("Format = %q, want png", res.Format)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Errorf("shot.png does not hold JPEG data")
	}
}

func TestProcessSniffsContent(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	// PNG bytes under a .jpg name still decode.
	data := testutil.EncodePNG(t, testutil.Checkerboard(50, 50, color.RGBA{0, 200, 0, 255}))
	src := testutil.WriteFile(t, in, "mislabeled.jpg", data)

	res, err := Process(src, filepath.Join(out, "mislabeled.jpg"), defaultOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Format != "png" {
		t.Errorf("Format = %q, want png", res.Format)
	}
}

func TestProcessFlattensTransparency(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	// fully transparent pixels end up white
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	src := testutil.WriteFile(t, in, "clear.png", testutil.EncodePNG(t, img))
	dst := filepath.Join(out, "clear.png")

	if _, err := Process(src, dst, defaultOptions()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got := decodeJPEGFile(t, dst)
	r, g, b, _ := got.At(16, 16).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("center pixel = (%d,%d,%d), want near white", r>>8, g>>8, b>>8)
	}
}

func TestProcessPaletted(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	pal := color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 0, 255, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 40, 20), pal)
	for x := 20; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	src := testutil.WriteFile(t, in, "pal.png", testutil.EncodePNG(t, img))

	res, err := Process(src, filepath.Join(out, "pal.png"), defaultOptions())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Width != 40 || res.Height != 20 {
		t.Errorf("dims = %dx%d, want 40x20", res.Width, res.Height)
	}
}

func TestProcessErrors(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	corrupt := testutil.WriteFile(t, in, "broken.jpg", []byte("definitely not an image"))
	good := testutil.WriteJPEG(t, in, "good.jpg", 20, 20)

	tests := []struct {
		name   string
		src    string
		dst    string
		wantOp string
	}{
		{"missing source", filepath.Join(in, "nope.jpg"), filepath.Join(out, "nope.jpg"), "read"},
		{"corrupt source", corrupt, filepath.Join(out, "broken.jpg"), "decode"},
		{"unwritable destination", good, filepath.Join(out, "no-such-dir", "good.jpg"), "write"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.src, tt.dst, defaultOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Fatalf("error %T is not *codec.Error", err)
			}
			if cerr.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", cerr.Op, tt.wantOp)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(out, "broken.jpg")); !os.IsNotExist(err) {
		t.Errorf("failed conversion left an output file behind")
	}
}

func TestProcessQualityAffectsSize(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := testutil.WriteFile(t, in, "noise.png", testutil.EncodePNG(t, testutil.Noise(200, 200, 7)))

	low, err := Process(src, filepath.Join(out, "low.jpg"), Options{Quality: 10, MaxDimension: 1920})
	if err != nil {
		t.Fatal(err)
	}
	high, err := Process(src, filepath.Join(out, "high.jpg"), Options{Quality: 95, MaxDimension: 1920})
	if err != nil {
		t.Fatal(err)
	}
	if low.OptimizedBytes >= high.OptimizedBytes {
		t.Errorf("quality 10 produced %d bytes, quality 95 produced %d", low.OptimizedBytes, high.OptimizedBytes)
	}
}

func TestProcessAutoOrient(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	plain := testutil.EncodeJPEG(t, testutil.Checkerboard(40, 20, color.RGBA{10, 10, 10, 255}))
	src := testutil.WriteFile(t, in, "rotated.jpg", testutil.WithEXIF(plain, testutil.TIFFOrientation(6)))

	t.Run("enabled", func(t *testing.T) {
		res, err := Process(src, filepath.Join(out, "on.jpg"), defaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if res.Width != 20 || res.Height != 40 {
			t.Errorf("dims = %dx%d, want 20x40", res.Width, res.Height)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		opts := defaultOptions()
		opts.AutoOrient = false
		res, err := Process(src, filepath.Join(out, "off.jpg"), opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.Width != 40 || res.Height != 20 {
			t.Errorf("dims = %dx%d, want 40x20", res.Width, res.Height)
		}
	})

	t.Run("preserved exif is reset to upright", func(t *testing.T) {
		opts := defaultOptions()
		opts.PreserveEXIF = true
		dst := filepath.Join(out, "kept.jpg")
		if _, err := Process(src, dst, opts); err != nil {
			t.Fatal(err)
		}
		if o := ifd0Orientation(t, outputEXIF(t, dst)); o != 1 {
			t.Errorf("orientation = %d, want 1", o)
		}
	})

	t.Run("preserved exif untouched without orienting", func(t *testing.T) {
		opts := defaultOptions()
		opts.AutoOrient = false
		opts.PreserveEXIF = true
		dst := filepath.Join(out, "raw.jpg")
		res, err := Process(src, dst, opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.Width != 40 || res.Height != 20 {
			t.Errorf("dims = %dx%d, want 40x20", res.Width, res.Height)
		}
		if o := ifd0Orientation(t, outputEXIF(t, dst)); o != 6 {
			t.Errorf("orientation = %d, want 6", o)
		}
	})
}

func outputEXIF(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tiff := jpegEXIF(data)
	if tiff == nil {
		t.Fatal("output carries no EXIF block")
	}
	return tiff
}

func TestProcessPreserveModTime(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := testutil.WriteJPEG(t, in, "old.jpg", 30, 30)
	stamp := time.Date(2020, 5, 17, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatal(err)
	}

	opts := defaultOptions()
	opts.PreserveModTime = true
	dst := filepath.Join(out, "old.jpg")
	if _, err := Process(src, dst, opts); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.ModTime().Equal(stamp) {
		t.Errorf("mtime = %v, want %v", fi.ModTime(), stamp)
	}
}

func TestProcessModTimeFailureKeepsOutput(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	src := testutil.WriteJPEG(t, in, "a.jpg", 30, 30)

	statErr := errors.New("stat unavailable")
	statFile = func(string) (os.FileInfo, error) { return nil, statErr }
	t.Cleanup(func() { statFile = os.Stat })

	opts := defaultOptions()
	opts.PreserveModTime = true
	dst := filepath.Join(out, "a.jpg")
	res, err := Process(src, dst, opts)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !errors.Is(res.ModTimeErr, statErr) {
		t.Errorf("ModTimeErr = %v, want %v", res.ModTimeErr, statErr)
	}
	decodeJPEGFile(t, dst)

	opts.PreserveModTime = false
	res, err = Process(src, dst, opts)
	if err != nil || res.ModTimeErr != nil {
		t.Errorf("without PreserveModTime: err=%v ModTimeErr=%v", err, res.ModTimeErr)
	}
}

func TestProcessHEIFWithoutSupport(t *testing.T) {
	if HEIFSupported {
		t.Skip("built with HEIF support")
	}
	in, out := t.TempDir(), t.TempDir()
	// HEIF content saved under a .jpg name, as phones do
	data := []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00mif1heic")
	src := testutil.WriteFile(t, in, "IMG_0001.jpg", data)

	_, err := Process(src, filepath.Join(out, "IMG_0001.jpg"), defaultOptions())
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Op != "decode" {
		t.Fatalf("error = %v, want decode failure", err)
	}
	if !errors.Is(err, errNoHEIF) {
		t.Errorf("error %v does not explain missing HEIF support", err)
	}
}
