package utils

import (
	"bytes"
	"encoding/binary"
)

// Magic numbers checked by the sniffers below.
var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	qoiMagic  = []byte("qoif")
	tgaFooter = []byte("TRUEVISION-XFILE.\x00")
)

// IsPNG checks the 8-byte PNG signature.
func IsPNG(data []byte) bool { return bytes.HasPrefix(data, pngMagic) }

// IsJPEG checks for an SOI marker followed by any marker byte.
func IsJPEG(data []byte) bool { return bytes.HasPrefix(data, jpegMagic) }

// IsWebP checks for a RIFF container with a WEBP form type.
func IsWebP(data []byte) bool {
	return len(data) >= 12 &&
		data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P'
}

// IsBMP checks for the "BM" file header followed by a plausible DIB header
// size, so two stray letters are not enough.
func IsBMP(data []byte) bool {
	if len(data) < 18 || data[0] != 'B' || data[1] != 'M' {
		return false
	}
	switch binary.LittleEndian.Uint32(data[14:18]) {
	case 12, 40, 52, 56, 64, 108, 124:
		return true
	}
	return false
}

// IsTIFF checks both byte orders.
func IsTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

// IsQOI checks the "qoif" magic.
func IsQOI(data []byte) bool { return len(data) >= 14 && bytes.HasPrefix(data, qoiMagic) }

// IsTGA recognises version 2 files by their footer and falls back to a header
// heuristic for version 1, which has no signature at all. Register it last.
func IsTGA(data []byte) bool {
	if len(data) < 18 {
		return false
	}
	if bytes.HasSuffix(data, tgaFooter) {
		return true
	}
	colorMapType, imageType, bpp := data[1], data[2], data[16]
	if colorMapType > 1 {
		return false
	}
	switch imageType {
	case 1, 9:
		if colorMapType != 1 {
			return false
		}
	case 2, 3, 10, 11:
	default:
		return false
	}
	switch bpp {
	case 8, 15, 16, 24, 32:
	default:
		return false
	}
	w := binary.LittleEndian.Uint16(data[12:14])
	h := binary.LittleEndian.Uint16(data[14:16])
	return w > 0 && h > 0
}

// CloneBytes returns a copy of b (safe for use after the source buffer is released).
func CloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// BytesReader creates an io.Reader backed by b without allocation.
func BytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
