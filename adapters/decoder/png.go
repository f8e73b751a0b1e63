package decoder

import (
	"encoding/binary"
	"image/png"

	"github.com/pkg/errors"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// PNG color types from the IHDR chunk.
const (
	pngGray      = 0
	pngTrueColor = 2
	pngPaletted  = 3
	pngGrayAlpha = 4
	pngTrueAlpha = 6
)

// PNG decodes PNG images using the standard library. Header fields come
// straight from IHDR so sub-byte gray depths are reported as stored.
type PNG struct{ base }

func NewPNG() *PNG {
	return &PNG{base{codec: codec{
		format:       core.FormatPNG,
		detect:       utils.IsPNG,
		decodeConfig: png.DecodeConfig,
		decode:       png.Decode,
	}}}
}

func (p *PNG) SetCompressed(data []byte) error {
	if err := p.base.SetCompressed(data); err != nil {
		return err
	}
	// signature(8) + length(4) + "IHDR"(4) + width(4) + height(4) + depth(1) + color type(1)
	if len(data) < 26 || string(data[12:16]) != "IHDR" {
		return errors.New("png: missing IHDR")
	}
	p.width = int(binary.BigEndian.Uint32(data[16:20]))
	p.height = int(binary.BigEndian.Uint32(data[20:24]))
	p.depth = int(data[24])

	switch data[25] {
	case pngGray:
		p.layout = core.LayoutGray
	case pngTrueColor, pngTrueAlpha, pngGrayAlpha:
		p.layout = core.LayoutRGBA
	case pngPaletted:
		// palette entries are always 8-bit RGBA
		p.layout = core.LayoutRGBA
		p.depth = 8
	default:
		return errors.Errorf("png: unknown color type %d", data[25])
	}
	return nil
}
