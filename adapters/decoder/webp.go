package decoder

import (
	"golang.org/x/image/webp"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// WebP decodes WebP images using golang.org/x/image/webp, which handles lossy
// (VP8), lossless (VP8L) and VP8X with alpha, but not animation.
type WebP struct{ base }

func NewWebP() *WebP {
	return &WebP{base{codec: codec{
		format:       core.FormatWebP,
		detect:       utils.IsWebP,
		decodeConfig: webp.DecodeConfig,
		decode:       webp.Decode,
	}}}
}
