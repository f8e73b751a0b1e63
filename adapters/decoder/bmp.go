package decoder

import (
	"golang.org/x/image/bmp"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// BMP decodes Windows bitmaps using golang.org/x/image/bmp.
type BMP struct{ base }

func NewBMP() *BMP {
	return &BMP{base{codec: codec{
		format:       core.FormatBMP,
		detect:       utils.IsBMP,
		decodeConfig: bmp.DecodeConfig,
		decode:       bmp.Decode,
	}}}
}

// SetCompressed reports true-color bitmaps as BGRA, their on-disk order.
func (b *BMP) SetCompressed(data []byte) error {
	if err := b.base.SetCompressed(data); err != nil {
		return err
	}
	if b.layout == core.LayoutRGBA {
		b.layout = core.LayoutBGRA
	}
	return nil
}
