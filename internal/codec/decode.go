package codec

import (
	"bytes"
	"errors"
	"image"
	_ "image/png" // registers the PNG decoder

	_ "golang.org/x/image/webp" // registers the WEBP decoder
)

var errNoHEIF = errors.New("HEIF support is disabled in this build (rebuild with -tags heif)")

// heifBrands are the ISO-BMFF major brands decoded as HEIF.
var heifBrands = map[string]bool{
	"heic": true,
	"heix": true,
	"hevc": true,
	"hevx": true,
	"heim": true,
	"heis": true,
	"mif1": true,
	"msf1": true,
}

// decode sniffs the content rather than trusting the file extension; phones
// regularly save HEIF data under a .jpg name.
func decode(data []byte) (image.Image, string, error) {
	if isHEIF(data) {
		img, err := decodeHEIF(data)
		if err != nil {
			return nil, "", err
		}
		return img, "heif", nil
	}
	// Everything else goes through the registered decoders
	return image.Decode(bytes.NewReader(data))
}

func isHEIF(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	return heifBrands[string(data[8:12])]
}
