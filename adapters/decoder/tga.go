package decoder

import (
	"github.com/ftrvxmtrx/tga"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// tgaGrayTypes are the uncompressed and RLE black-and-white image types.
var tgaGrayTypes = map[byte]bool{3: true, 11: true}

// TGA decodes Truevision TGA files. Version 1 files carry no signature, so
// TGA must be the last format sniffed.
type TGA struct {
	base
	gray bool
}

func NewTGA() *TGA {
	return &TGA{base: base{codec: codec{
		format:       core.FormatTGA,
		detect:       utils.IsTGA,
		decodeConfig: tga.DecodeConfig,
		decode:       tga.Decode,
	}}}
}

func (t *TGA) SetCompressed(data []byte) error {
	if err := t.base.SetCompressed(data); err != nil {
		return err
	}
	t.gray = len(data) > 2 && tgaGrayTypes[data[2]]
	if t.gray {
		t.layout, t.depth = core.LayoutGray, 8
	}
	return nil
}

// CompressionHint marks black-and-white TGAs as grayscale textures.
func (t *TGA) CompressionHint() core.CompressionSettings {
	if t.gray {
		return core.CompressionGrayscale
	}
	return core.CompressionDefault
}

var _ core.CompressionHinter = (*TGA)(nil)
