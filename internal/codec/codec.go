// Package codec turns one source image into a size-reduced JPEG file.
//
// Process is self-contained and holds no shared state, so it can be called
// from any number of goroutines as long as each call writes a distinct
// destination.
package codec

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
)

// Options controls a single conversion.
type Options struct {
	// Quality is the JPEG quality in [0,100]; values below 1 encode as 1.
	Quality int
	// MaxDimension bounds the longer side of the output in pixels.
	MaxDimension int
	// AutoOrient rotates/flips pixels according to the EXIF orientation tag.
	AutoOrient bool
	// PreserveEXIF copies the source EXIF block into the output.
	PreserveEXIF bool
	// PreserveModTime copies the source modification time onto the output.
	PreserveModTime bool
}

// Result describes a successful conversion.
type Result struct {
	OriginalBytes  int64
	OptimizedBytes int64
	Format         string // detected source format: jpeg, png, webp, heif
	SourceWidth    int
	SourceHeight   int
	Width          int
	Height         int

	// ModTimeErr is set when PreserveModTime was requested but the source
	// time could not be copied. The output file itself is complete.
	ModTimeErr error
}

// Error records the stage and path of a failed conversion.
type Error struct {
	Op   string // read, decode, encode, write
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Process decodes src, normalizes it for JPEG, downscales it so the longer
// side fits within opts.MaxDimension and writes the JPEG encoding to dst.
// The output keeps whatever name dst has, even when its extension is not
// .jpg.
func Process(src, dst string, opts Options) (Result, error) {
	// Read entire file into memory
	data, err := os.ReadFile(src)
	if err != nil {
		return Result{}, &Error{Op: "read", Path: src, Err: err}
	}

	// Decode by content, not by extension
	img, format, err := decode(data)
	if err != nil {
		return Result{}, &Error{Op: "decode", Path: src, Err: err}
	}

	var tiff []byte
	if opts.AutoOrient || opts.PreserveEXIF {
		tiff = exifPayload(data, format)
	}

	if opts.AutoOrient {
		img = applyOrientation(img, orientation(tiff))
	}

	// JPEG has no alpha channel
	img = flatten(img)
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()

	img = downscale(img, opts.MaxDimension)

	// Encode to memory first so a failed encode leaves no partial file
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return Result{}, &Error{Op: "encode", Path: src, Err: err}
	}

	out := buf.Bytes()
	if opts.PreserveEXIF && tiff != nil {
		// pixels are already upright
		if opts.AutoOrient {
			tiff = resetOrientation(tiff)
		}
		out = insertAPP1(out, tiff)
	}

	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return Result{}, &Error{Op: "write", Path: dst, Err: err}
	}

	ob := img.Bounds()
	res := Result{
		OriginalBytes:  int64(len(data)),
		OptimizedBytes: int64(len(out)),
		Format:         format,
		SourceWidth:    srcW,
		SourceHeight:   srcH,
		Width:          ob.Dx(),
		Height:         ob.Dy(),
	}
	if opts.PreserveModTime {
		res.ModTimeErr = copyModTime(src, dst)
	}
	return res, nil
}

// statFile is replaced in tests.
var statFile = os.Stat

func copyModTime(src, dst string) error {
	fi, err := statFile(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.Chtimes(dst, fi.ModTime(), fi.ModTime()); err != nil {
		return fmt.Errorf("set times: %w", err)
	}
	return nil
}
