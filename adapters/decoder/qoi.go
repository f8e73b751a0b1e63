package decoder

import (
	"github.com/xfmoulet/qoi"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// QOI decodes "Quite OK Image" files, which are always 8-bit RGB(A).
type QOI struct{ base }

func NewQOI() *QOI {
	return &QOI{base{codec: codec{
		format:       core.FormatQOI,
		detect:       utils.IsQOI,
		decodeConfig: qoi.DecodeConfig,
		decode:       qoi.Decode,
	}}}
}
