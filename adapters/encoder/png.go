// Package encoder turns imported images back into viewable files.
package encoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
)

// PNG encodes mip 0 of an ImportedImage as a PNG preview.
type PNG struct {
	CompressionLevel png.CompressionLevel
}

func NewPNG() *PNG { return &PNG{CompressionLevel: png.DefaultCompression} }

func (p *PNG) Encode(ctx context.Context, img *core.ImportedImage) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "png.encode", err)
	}
	if img == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "png.encode", apperrors.ErrEmptyInput)
	}

	src, err := ToImage(img)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryLayout, "png.encode", err)
	}

	enc := &png.Encoder{CompressionLevel: p.CompressionLevel}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, src); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "png.encode", err)
	}
	return buf.Bytes(), nil
}

// ToImage wraps mip 0 of img in the matching image.Image type. Pixel data is
// copied; 16-bit samples are converted to the big-endian order image uses.
// JPEG-retained images are decoded.
func ToImage(img *core.ImportedImage) (image.Image, error) {
	if img.RawDataCompression == core.RawCompressionJPEG {
		return jpeg.Decode(bytes.NewReader(img.RawData))
	}
	mip, err := img.MipData(0)
	if err != nil {
		return nil, err
	}
	r := image.Rect(0, 0, img.Width, img.Height)

	switch img.Format {
	case core.PixelFormatG8:
		out := image.NewGray(r)
		copy(out.Pix, mip)
		return out, nil
	case core.PixelFormatG16:
		out := image.NewGray16(r)
		for i := 0; i < len(mip); i += 2 {
			binary.BigEndian.PutUint16(out.Pix[i:], binary.LittleEndian.Uint16(mip[i:]))
		}
		return out, nil
	case core.PixelFormatBGRA8:
		out := image.NewNRGBA(r)
		for i := 0; i < len(mip); i += 4 {
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = mip[i+2], mip[i+1], mip[i], mip[i+3]
		}
		return out, nil
	case core.PixelFormatRGBA16:
		out := image.NewNRGBA64(r)
		for i := 0; i < len(mip); i += 2 {
			binary.BigEndian.PutUint16(out.Pix[i:], binary.LittleEndian.Uint16(mip[i:]))
		}
		return out, nil
	}
	return nil, fmt.Errorf("no preview for pixel format %s", img.Format)
}

var _ core.PreviewEncoder = (*PNG)(nil)
