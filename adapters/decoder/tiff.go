package decoder

import (
	"golang.org/x/image/tiff"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// TIFF decodes baseline TIFF (8 and 16 bit, gray, paletted and RGB[A]) using
// golang.org/x/image/tiff. Only the first IFD is read.
type TIFF struct{ base }

func NewTIFF() *TIFF {
	return &TIFF{base{codec: codec{
		format:       core.FormatTIFF,
		detect:       utils.IsTIFF,
		decodeConfig: tiff.DecodeConfig,
		decode:       tiff.Decode,
	}}}
}
