package core

import "fmt"

// CompressionSettings is the hint handed to the texture consumer.
type CompressionSettings uint8

const (
	CompressionDefault CompressionSettings = iota
	CompressionGrayscale
	CompressionHDR
)

func (c CompressionSettings) String() string {
	switch c {
	case CompressionGrayscale:
		return "grayscale"
	case CompressionHDR:
		return "hdr"
	}
	return "default"
}

// RawCompression tags RawData that was kept in its source encoding instead
// of being decoded.
type RawCompression uint8

const (
	RawCompressionNone RawCompression = iota
	RawCompressionJPEG
)

func (c RawCompression) String() string {
	if c == RawCompressionJPEG {
		return "jpeg"
	}
	return "none"
}

// ImportedImage owns the pixel data of one imported texture. Mip 0 sits at
// the start of RawData and every following level halves each axis (floor,
// minimum 1).
type ImportedImage struct {
	RawData             []byte
	Width               int
	Height              int
	NumMips             int
	Format              PixelFormat
	SRGB                bool
	CompressionSettings CompressionSettings
	RawDataCompression  RawCompression
}

// Init2DWithParams sets the image parameters and allocates a zeroed mip 0
// for a decoder to fill in place.
func (img *ImportedImage) Init2DWithParams(width, height int, format PixelFormat, srgb bool) {
	img.Width = width
	img.Height = height
	img.NumMips = 1
	img.Format = format
	img.SRGB = srgb
	img.CompressionSettings = CompressionDefault
	img.RawDataCompression = RawCompressionNone
	img.RawData = make([]byte, img.MipSize(0))
}

// Init2DWithOneMip initializes a single-mip image. data is copied when non-nil.
func (img *ImportedImage) Init2DWithOneMip(width, height int, format PixelFormat, data []byte) {
	img.Init2DWithMips(width, height, 1, format, data)
}

// Init2DWithMips initializes an image with numMips levels. data, when
// non-nil, is copied into the buffer up to its total size.
func (img *ImportedImage) Init2DWithMips(width, height, numMips int, format PixelFormat, data []byte) {
	if numMips < 1 {
		numMips = 1
	}
	img.Width = width
	img.Height = height
	img.NumMips = numMips
	img.Format = format
	img.SRGB = false
	img.CompressionSettings = CompressionDefault
	img.RawDataCompression = RawCompressionNone
	img.RawData = make([]byte, img.TotalSize())
	if data != nil {
		copy(img.RawData, data)
	}
}

// InitCompressed stores still-encoded bytes together with the format the
// consumer should decode them into.
func (img *ImportedImage) InitCompressed(width, height int, format PixelFormat, srgb bool, tag RawCompression, data []byte) {
	img.Width = width
	img.Height = height
	img.NumMips = 1
	img.Format = format
	img.SRGB = srgb
	img.CompressionSettings = CompressionDefault
	img.RawDataCompression = tag
	img.RawData = make([]byte, len(data))
	copy(img.RawData, data)
}

// MipSize returns the byte size of mip level i.
func (img *ImportedImage) MipSize(i int) int {
	w := max(img.Width>>i, 1)
	h := max(img.Height>>i, 1)
	return w * h * img.Format.BytesPerPixel()
}

// TotalSize is the sum of all mip sizes.
func (img *ImportedImage) TotalSize() int {
	total := 0
	for i := 0; i < img.NumMips; i++ {
		total += img.MipSize(i)
	}
	return total
}

// MipData returns the slice of RawData holding mip level i. The slice shares
// storage with RawData.
func (img *ImportedImage) MipData(i int) ([]byte, error) {
	if i < 0 || i >= img.NumMips {
		return nil, fmt.Errorf("mip %d out of range [0,%d)", i, img.NumMips)
	}
	if img.RawDataCompression != RawCompressionNone {
		return nil, fmt.Errorf("mip data unavailable for %s-compressed image", img.RawDataCompression)
	}
	off := 0
	for l := 0; l < i; l++ {
		off += img.MipSize(l)
	}
	size := img.MipSize(i)
	if off+size > len(img.RawData) {
		return nil, fmt.Errorf("mip %d exceeds buffer (%d+%d > %d)", i, off, size, len(img.RawData))
	}
	return img.RawData[off : off+size : off+size], nil
}
