package decoder

import (
	"image/jpeg"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// JPEG decodes baseline and progressive JPEG using the standard library.
// Grayscale JPEGs report LayoutGray; everything else, CMYK included, is RGBA.
type JPEG struct{ base }

// NewJPEG returns an initialised JPEG decoder.
func NewJPEG() *JPEG {
	return &JPEG{base{codec: codec{
		format:       core.FormatJPEG,
		detect:       utils.IsJPEG,
		decodeConfig: jpeg.DecodeConfig,
		decode:       jpeg.Decode,
	}}}
}
