// Package fill repairs PNG pixels whose color was discarded by the encoder.
//
// Encoders commonly store fully transparent pixels as white with zero alpha.
// Bilinear filtering and mip generation then blend that white into the
// visible edges of a texture. ZeroAlpha replaces the color of such pixels
// with the color of a nearby pixel while leaving every alpha value alone.
package fill

import (
	"bytes"

	"github.com/Skryldev/texture-import/core"
)

// layout describes where the channels of one pixel live.
type layout struct {
	stride   int // bytes per pixel
	sample   int // bytes per channel
	r, g, b  int // byte offsets of the color channels
	a        int
	sentinel []byte // white, alpha 0
}

var (
	bgra8 = layout{
		stride: 4, sample: 1,
		b: 0, g: 1, r: 2, a: 3,
		sentinel: []byte{0xFF, 0xFF, 0xFF, 0x00},
	}
	rgba16 = layout{
		stride: 8, sample: 2,
		r: 0, g: 2, b: 4, a: 6,
		sentinel: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00},
	}
)

func layoutFor(f core.PixelFormat) (layout, bool) {
	switch f {
	case core.PixelFormatBGRA8:
		return bgra8, true
	case core.PixelFormatRGBA16:
		return rgba16, true
	}
	return layout{}, false
}

// Supports reports whether ZeroAlpha does anything for f.
func Supports(f core.PixelFormat) bool {
	_, ok := layoutFor(f)
	return ok
}

// ZeroAlpha rewrites the color of every white zero-alpha pixel in data, a
// single mip of width×height pixels in format, and returns how many pixels
// were rewritten. Formats without an alpha channel and short buffers are left
// alone. It never fails: an image with no usable color anywhere is returned
// unchanged.
//
// Each row is filled left to right from the last good pixel, and a leading
// run without a left neighbour takes the color of the first good pixel after
// it. Rows with no good pixel copy the nearest good row above. Rows at the top
// of the image with no good row above take the first good row below.
func ZeroAlpha(width, height int, format core.PixelFormat, data []byte) int {
	l, ok := layoutFor(format)
	if !ok || width <= 0 || height <= 0 {
		return 0
	}
	rowBytes := width * l.stride
	if len(data) < rowBytes*height {
		return 0
	}

	filled := 0
	lastFillable := -1
	topRun := 0
	for y := 0; y < height; y++ {
		row := data[y*rowBytes : (y+1)*rowBytes]
		n, ok := l.fillRow(row, width)
		filled += n
		if ok {
			lastFillable = y
			continue
		}
		if lastFillable >= 0 {
			filled += l.copyRow(row, data[lastFillable*rowBytes:(lastFillable+1)*rowBytes], width)
			continue
		}
		topRun = y + 1
	}

	if topRun > 0 && topRun < height {
		src := data[topRun*rowBytes : (topRun+1)*rowBytes]
		for y := 0; y < topRun; y++ {
			filled += l.copyRow(data[y*rowBytes:(y+1)*rowBytes], src, width)
		}
	}
	return filled
}

// fillRow runs the horizontal pass over one row. It returns the number of
// pixels rewritten and false when the row has no good pixel at all, in which
// case the row is untouched.
func (l layout) fillRow(row []byte, width int) (int, bool) {
	filled := 0
	lastGood := -1
	leading := 0
	for x := 0; x < width; x++ {
		px := row[x*l.stride : (x+1)*l.stride]
		if !l.isSentinel(px) {
			lastGood = x
			continue
		}
		if lastGood >= 0 {
			l.copyColor(px, row[lastGood*l.stride:])
			filled++
			continue
		}
		leading = x + 1
	}

	if leading == 0 {
		return filled, true
	}
	if leading >= width {
		return 0, false
	}
	src := row[leading*l.stride:]
	for x := 0; x < leading; x++ {
		l.copyColor(row[x*l.stride:], src)
	}
	return filled + leading, true
}

// copyRow copies the color of every pixel in src into dst.
func (l layout) copyRow(dst, src []byte, width int) int {
	for x := 0; x < width; x++ {
		off := x * l.stride
		l.copyColor(dst[off:], src[off:])
	}
	return width
}

func (l layout) copyColor(dst, src []byte) {
	copy(dst[l.r:l.r+l.sample], src[l.r:l.r+l.sample])
	copy(dst[l.g:l.g+l.sample], src[l.g:l.g+l.sample])
	copy(dst[l.b:l.b+l.sample], src[l.b:l.b+l.sample])
}

func (l layout) isSentinel(px []byte) bool { return bytes.Equal(px, l.sentinel) }
