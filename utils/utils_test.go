package utils_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffers(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0, 0, 13}
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 16}
	webp := []byte("RIFF\x10\x00\x00\x00WEBPVP8 ")
	tiffLE := []byte("II*\x00\x08\x00\x00\x00")
	tiffBE := []byte("MM\x00*\x00\x00\x00\x08")
	qoi := append([]byte("qoif"), make([]byte, 10)...)
	bmp := append([]byte("BM"), make([]byte, 16)...)
	bmp[14] = 40

	tests := []struct {
		name string
		data []byte
		fn   func([]byte) bool
		want bool
	}{
		{"png", png, utils.IsPNG, true},
		{"png short", png[:4], utils.IsPNG, false},
		{"jpeg", jpeg, utils.IsJPEG, true},
		{"jpeg as png", jpeg, utils.IsPNG, false},
		{"webp", webp, utils.IsWebP, true},
		{"riff not webp", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), utils.IsWebP, false},
		{"tiff le", tiffLE, utils.IsTIFF, true},
		{"tiff be", tiffBE, utils.IsTIFF, true},
		{"qoi", qoi, utils.IsQOI, true},
		{"bmp", bmp, utils.IsBMP, true},
		{"bm text", []byte("BMW is a car brand."), utils.IsBMP, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fn(tc.data))
		})
	}
}

func TestIsTGA(t *testing.T) {
	hdr := make([]byte, 18)
	hdr[2] = 2 // truecolor
	hdr[12], hdr[14] = 4, 4
	hdr[16] = 32
	assert.True(t, utils.IsTGA(hdr))

	withFooter := append(make([]byte, 20), []byte("TRUEVISION-XFILE.\x00")...)
	assert.True(t, utils.IsTGA(withFooter))

	bad := append([]byte(nil), hdr...)
	bad[2] = 7
	assert.False(t, utils.IsTGA(bad))

	zero := append([]byte(nil), hdr...)
	zero[12] = 0
	assert.False(t, utils.IsTGA(zero))
}

func TestDrainReader(t *testing.T) {
	src := bytes.Repeat([]byte("x"), 100_000)
	buf, err := utils.DrainReader(context.Background(), bytes.NewReader(src), 4096, int64(len(src)))
	require.NoError(t, err)
	assert.Equal(t, src, buf.Bytes())
	utils.ReleaseBuffer(buf)
}

func TestDrainReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := utils.DrainReader(ctx, bytes.NewReader([]byte("abc")), 0, -1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimitedReader(t *testing.T) {
	exact := &utils.LimitedReader{R: bytes.NewReader(make([]byte, 10)), Max: 10}
	b, err := io.ReadAll(exact)
	require.NoError(t, err)
	assert.Len(t, b, 10)

	over := &utils.LimitedReader{R: bytes.NewReader(make([]byte, 11)), Max: 10}
	b, err = io.ReadAll(over)
	assert.True(t, errors.Is(err, apperrors.ErrInputTooLarge))
	assert.LessOrEqual(t, len(b), 10)
}

func TestCloneBytes(t *testing.T) {
	src := []byte{1, 2, 3}
	cp := utils.CloneBytes(src)
	src[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, cp)
}
