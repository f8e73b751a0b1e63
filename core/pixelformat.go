package core

// PixelFormat is the closed set of raw layouts an imported image can carry.
// Channel order is part of the format: BGRA8 is stored B,G,R,A and RGBA16 as
// little-endian uint16 R,G,B,A.
type PixelFormat uint8

const (
	PixelFormatInvalid PixelFormat = iota
	PixelFormatG8
	PixelFormatG16
	PixelFormatBGRA8
	PixelFormatRGBA16
)

// BytesPerPixel returns the size of one pixel, or 0 for PixelFormatInvalid.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatG8:
		return 1
	case PixelFormatG16:
		return 2
	case PixelFormatBGRA8:
		return 4
	case PixelFormatRGBA16:
		return 8
	}
	return 0
}

// IsValid reports whether f is one of the concrete formats.
func (f PixelFormat) IsValid() bool { return f.BytesPerPixel() > 0 }

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatG8:
		return "G8"
	case PixelFormatG16:
		return "G16"
	case PixelFormatBGRA8:
		return "BGRA8"
	case PixelFormatRGBA16:
		return "RGBA16"
	}
	return "Invalid"
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// Resolution is the outcome of a catalog lookup: the internal pixel format
// plus the layout and depth the decoder must be asked to produce.
type Resolution struct {
	PixelFormat PixelFormat
	Layout      ChannelLayout
	BitDepth    int
	SRGB        bool
}

// ResolvePixelFormat maps a decoder's native layout and bit depth onto the
// internal pixel formats. Gray sources at or below 8 bits become G8, 16-bit
// gray becomes G16, RGBA/BGRA at or below 8 bits becomes BGRA8 and 16-bit
// RGBA/BGRA becomes RGBA16. JPEG never goes past 8-bit BGRA. The second
// return value is false when the combination has no mapping.
func ResolvePixelFormat(src Format, layout ChannelLayout, depth int) (Resolution, bool) {
	if depth <= 0 {
		return Resolution{}, false
	}
	if src == FormatJPEG && depth > 8 {
		return Resolution{}, false
	}

	var r Resolution
	switch layout {
	case LayoutGray:
		switch {
		case depth <= 8:
			r = Resolution{PixelFormat: PixelFormatG8, Layout: LayoutGray, BitDepth: 8}
		case depth == 16:
			r = Resolution{PixelFormat: PixelFormatG16, Layout: LayoutGray, BitDepth: 16}
		default:
			return Resolution{}, false
		}
	case LayoutRGBA, LayoutBGRA:
		switch {
		case depth <= 8:
			r = Resolution{PixelFormat: PixelFormatBGRA8, Layout: LayoutBGRA, BitDepth: 8}
		case depth == 16:
			r = Resolution{PixelFormat: PixelFormatRGBA16, Layout: LayoutRGBA, BitDepth: 16}
		default:
			return Resolution{}, false
		}
	default:
		return Resolution{}, false
	}
	r.SRGB = r.BitDepth < 16
	return r, true
}
