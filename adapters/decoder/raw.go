package decoder

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	"github.com/Skryldev/texture-import/core"
)

// fillFromImage writes img into dst as tightly packed rows of the requested
// layout and depth. 16-bit samples are written little-endian.
//
// Color is kept straight (non-premultiplied) wherever the source has alpha:
// a transparent white pixel must stay white so the zero-alpha filler can find
// it.
func fillFromImage(img image.Image, layout core.ChannelLayout, depth int, dst []byte) error {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var bpp int
	switch {
	case layout == core.LayoutGray && depth == 8:
		bpp = 1
	case layout == core.LayoutGray && depth == 16:
		bpp = 2
	case (layout == core.LayoutRGBA || layout == core.LayoutBGRA) && depth == 8:
		bpp = 4
	case (layout == core.LayoutRGBA || layout == core.LayoutBGRA) && depth == 16:
		bpp = 8
	default:
		return errors.Errorf("no conversion to %s/%d", layout, depth)
	}
	if len(dst) != w*h*bpp {
		return errors.Errorf("destination is %d bytes, need %d", len(dst), w*h*bpp)
	}

	switch bpp {
	case 1:
		fillGray8(img, dst)
	case 2:
		fillGray16(img, dst)
	case 4:
		fill8(img, layout == core.LayoutBGRA, dst)
	case 8:
		fill16(img, layout == core.LayoutBGRA, dst)
	}
	return nil
}

func fillGray8(img image.Image, dst []byte) {
	b := img.Bounds()
	w := b.Dx()
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst[y*w:(y+1)*w], g.Pix[off:off+w])
		}
		return
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			i++
		}
	}
}

func fillGray16(img image.Image, dst []byte) {
	b := img.Bounds()
	w := b.Dx()
	if g, ok := img.(*image.Gray16); ok {
		i := 0
		for y := 0; y < b.Dy(); y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				// image.Gray16 is big-endian
				dst[i] = g.Pix[off+2*x+1]
				dst[i+1] = g.Pix[off+2*x]
				i += 2
			}
		}
		return
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y
			binary.LittleEndian.PutUint16(dst[i:], v)
			i += 2
		}
	}
}

// fill8 writes 8-bit RGBA or BGRA.
func fill8(img image.Image, bgra bool, dst []byte) {
	b := img.Bounds()
	w := b.Dx()
	put := func(i int, r, g, bl, a uint8) {
		if bgra {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = bl, g, r, a
		} else {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, bl, a
		}
	}

	switch src := img.(type) {
	case *image.NRGBA:
		i := 0
		for y := 0; y < b.Dy(); y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+4*w]
			for x := 0; x < w; x++ {
				p := row[4*x : 4*x+4]
				put(i, p[0], p[1], p[2], p[3])
				i += 4
			}
		}
		return
	case *image.YCbCr, *image.CMYK, *image.Gray, *image.Gray16:
		// opaque sources: premultiplied and straight color agree
		rgba := image.NewRGBA(image.Rect(0, 0, w, b.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
		for i := 0; i < len(rgba.Pix); i += 4 {
			p := rgba.Pix[i : i+4]
			put(i, p[0], p[1], p[2], p[3])
		}
		return
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			put(i, c.R, c.G, c.B, c.A)
			i += 4
		}
	}
}

// fill16 writes 16-bit RGBA or BGRA with little-endian samples.
func fill16(img image.Image, bgra bool, dst []byte) {
	b := img.Bounds()
	put := func(i int, r, g, bl, a uint16) {
		if bgra {
			r, bl = bl, r
		}
		binary.LittleEndian.PutUint16(dst[i:], r)
		binary.LittleEndian.PutUint16(dst[i+2:], g)
		binary.LittleEndian.PutUint16(dst[i+4:], bl)
		binary.LittleEndian.PutUint16(dst[i+6:], a)
	}

	if src, ok := img.(*image.NRGBA64); ok {
		w := b.Dx()
		i := 0
		for y := 0; y < b.Dy(); y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := src.Pix[off : off+8*w]
			for x := 0; x < w; x++ {
				p := row[8*x : 8*x+8]
				put(i,
					binary.BigEndian.Uint16(p[0:]),
					binary.BigEndian.Uint16(p[2:]),
					binary.BigEndian.Uint16(p[4:]),
					binary.BigEndian.Uint16(p[6:]),
				)
				i += 8
			}
		}
		return
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			put(i, c.R, c.G, c.B, c.A)
			i += 8
		}
	}
}
