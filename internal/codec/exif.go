package codec

import (
	"bytes"
	"encoding/binary"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1

	tagOrientation = 0x0112
	typeShort      = 3
)

var exifHeader = []byte("Exif\x00\x00")

// exifPayload returns the TIFF-structured EXIF block of data, or nil.
func exifPayload(data []byte, format string) []byte {
	switch format {
	case "jpeg":
		return jpegEXIF(data)
	case "heif":
		raw, err := heifEXIF(data)
		if err != nil {
			return nil
		}
		return tiffStart(raw)
	}
	return nil
}

// jpegEXIF walks the marker segments up to the first scan and returns the
// TIFF payload of the EXIF APP1 segment.
func jpegEXIF(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			// fill byte
			i++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			// standalone markers carry no length
			i += 2
			continue
		case marker == markerSOS || marker == markerEOI:
			return nil
		}

		length := int(binary.BigEndian.Uint16(data[i+2:]))
		if length < 2 || i+2+length > len(data) {
			return nil
		}
		seg := data[i+4 : i+2+length]
		if marker == markerAPP1 && bytes.HasPrefix(seg, exifHeader) {
			return seg[len(exifHeader):]
		}
		i += 2 + length
	}
	return nil
}

// tiffStart skips any container prefix (HEIF stores a 4-byte offset and
// sometimes the "Exif\0\0" header) in front of the TIFF byte-order mark.
func tiffStart(b []byte) []byte {
	for i := 0; i <= 16 && i+4 <= len(b); i++ {
		switch string(b[i : i+4]) {
		case "II*\x00", "MM\x00*":
			return b[i:]
		}
	}
	return nil
}

// resetOrientation returns a copy of tiff with the IFD0 orientation tag set
// to 1 (upright). Payloads it cannot parse are returned unchanged.
func resetOrientation(tiff []byte) []byte {
	out := append([]byte(nil), tiff...)
	if len(out) < 8 {
		return out
	}

	var order binary.ByteOrder
	switch string(out[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return out
	}

	ifd := int(order.Uint32(out[4:8]))
	if ifd < 8 || ifd+2 > len(out) {
		return out
	}
	n := int(order.Uint16(out[ifd:]))
	for k := 0; k < n; k++ {
		e := ifd + 2 + 12*k
		if e+12 > len(out) {
			break
		}
		if order.Uint16(out[e:]) == tagOrientation && order.Uint16(out[e+2:]) == typeShort {
			order.PutUint16(out[e+8:], 1)
			break
		}
	}
	return out
}

// insertAPP1 places tiff as an EXIF APP1 segment directly after SOI. Blocks
// too large for a single segment are dropped.
func insertAPP1(jpegData, tiff []byte) []byte {
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != markerSOI {
		return jpegData
	}
	segLen := 2 + len(exifHeader) + len(tiff)
	if segLen > 0xFFFF {
		return jpegData
	}

	out := make([]byte, 0, len(jpegData)+2+segLen)
	out = append(out, jpegData[:2]...)
	out = append(out, 0xFF, markerAPP1, byte(segLen>>8), byte(segLen))
	out = append(out, exifHeader...)
	out = append(out, tiff...)
	out = append(out, jpegData[2:]...)
	return out
}
