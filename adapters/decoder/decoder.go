// Package decoder provides format-specific adapters over external codecs.
// Each adapter reads the header on SetCompressed and decodes pixels only on
// FillRaw.
package decoder

import (
	"image"
	"image/color"
	"io"

	"github.com/pkg/errors"

	"github.com/Skryldev/texture-import/core"
	"github.com/Skryldev/texture-import/utils"
)

// Defaults returns factories for every built-in adapter in sniff order.
// Strict signatures come first; TGA has only a heuristic and goes last.
func Defaults() []core.DecoderFactory {
	return []core.DecoderFactory{
		func() core.FormatDecoder { return NewPNG() },
		func() core.FormatDecoder { return NewJPEG() },
		func() core.FormatDecoder { return NewWebP() },
		func() core.FormatDecoder { return NewBMP() },
		func() core.FormatDecoder { return NewTIFF() },
		func() core.FormatDecoder { return NewQOI() },
		func() core.FormatDecoder { return NewTGA() },
	}
}

// codec is the pair of functions every Go image package exports.
type codec struct {
	format       core.Format
	detect       func([]byte) bool
	decodeConfig func(io.Reader) (image.Config, error)
	decode       func(io.Reader) (image.Image, error)
}

// base implements core.FormatDecoder on top of a codec. Adapters embed it and
// override what their format needs.
type base struct {
	codec

	data   []byte
	width  int
	height int
	depth  int
	layout core.ChannelLayout
}

func (b *base) Format() core.Format        { return b.format }
func (b *base) Detect(data []byte) bool    { return b.detect(data) }
func (b *base) Width() int                 { return b.width }
func (b *base) Height() int                { return b.height }
func (b *base) BitDepth() int              { return b.depth }
func (b *base) Layout() core.ChannelLayout { return b.layout }

// SetCompressed reads the image header through the codec's DecodeConfig and
// derives layout and bit depth from its color model.
func (b *base) SetCompressed(data []byte) error {
	if len(data) == 0 {
		return errors.Errorf("%s: empty input", b.format)
	}
	cfg, err := b.decodeConfig(utils.BytesReader(data))
	if err != nil {
		return errors.Wrapf(err, "%s: read header", b.format)
	}
	b.data = data
	b.width, b.height = cfg.Width, cfg.Height
	b.layout, b.depth = layoutOf(cfg.ColorModel)
	return nil
}

// FillRaw decodes the whole image and converts it into dst.
func (b *base) FillRaw(layout core.ChannelLayout, depth int, dst []byte) error {
	if b.data == nil {
		return errors.Errorf("%s: FillRaw before SetCompressed", b.format)
	}
	img, err := b.decode(utils.BytesReader(b.data))
	if err != nil {
		return errors.Wrapf(err, "%s: decode", b.format)
	}
	if r := img.Bounds(); r.Dx() != b.width || r.Dy() != b.height {
		return errors.Errorf("%s: decoded %dx%d, header said %dx%d", b.format, r.Dx(), r.Dy(), b.width, b.height)
	}
	return errors.Wrapf(fillFromImage(img, layout, depth, dst), "%s: convert", b.format)
}

// layoutOf maps a decoder color model onto a channel layout and bit depth.
func layoutOf(m color.Model) (core.ChannelLayout, int) {
	switch m {
	case color.GrayModel:
		return core.LayoutGray, 8
	case color.Gray16Model:
		return core.LayoutGray, 16
	case color.RGBA64Model, color.NRGBA64Model:
		return core.LayoutRGBA, 16
	}
	// palettes, YCbCr, CMYK and the 8-bit RGBA models
	return core.LayoutRGBA, 8
}
