package pipeline

import (
	"context"
	"fmt"

	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/fill"
)

// ── Sniff ─────────────────────────────────────────────────────────────────────

// SniffStep picks a decoder from the leading bytes. File names and content
// types are never consulted.
type SniffStep struct {
	Registry core.Registry
}

func (s *SniffStep) Name() string { return "sniff" }

func (s *SniffStep) Execute(ctx context.Context, st *core.ImportState) (*core.ImportState, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	if len(st.Data) == 0 {
		return nil, apperrors.New(apperrors.CategoryInput, s.Name(), apperrors.ErrEmptyInput)
	}
	if s.Registry == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), fmt.Errorf("no registry"))
	}

	dec, ok := s.Registry.Sniff(st.Data)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryFormat, s.Name(), apperrors.ErrUnsupportedFormat)
	}

	out := *st
	out.Decoder = dec
	out.Format = dec.Format()
	return &out, nil
}

// ── Header ────────────────────────────────────────────────────────────────────

// HeaderStep hands the bytes to the decoder and records what it reports.
type HeaderStep struct{}

func (s *HeaderStep) Name() string { return "header" }

func (s *HeaderStep) Execute(ctx context.Context, st *core.ImportState) (*core.ImportState, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	if st.Decoder == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), fmt.Errorf("no decoder selected"))
	}
	if err := st.Decoder.SetCompressed(st.Data); err != nil {
		return nil, apperrors.Wrapf(apperrors.CategoryDecode, s.Name(), apperrors.ErrDecodeFailed, err)
	}

	out := *st
	out.Width = st.Decoder.Width()
	out.Height = st.Decoder.Height()
	out.BitDepth = st.Decoder.BitDepth()
	out.Layout = st.Decoder.Layout()
	return &out, nil
}

// ── Validate ──────────────────────────────────────────────────────────────────

// ValidateStep runs the resolution validator. Images larger than
// MaxResolution on one axis but inside the area limit are passed to
// Options.ConfirmOversized when set.
type ValidateStep struct{}

func (s *ValidateStep) Name() string { return "validate" }

func (s *ValidateStep) Execute(ctx context.Context, st *core.ImportState) (*core.ImportState, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	opts := st.Options
	if !core.ValidateResolution(st.Width, st.Height, opts.AllowNonPowerOfTwo, opts.MaxResolution) {
		return nil, apperrors.New(apperrors.CategoryResolution, s.Name(),
			fmt.Errorf("%w: %dx%d (max %d, npot allowed: %t)",
				apperrors.ErrInvalidResolution, st.Width, st.Height, opts.MaxResolution, opts.AllowNonPowerOfTwo))
	}
	if core.IsOversized(st.Width, st.Height, opts.MaxResolution) &&
		opts.ConfirmOversized != nil && !opts.ConfirmOversized(st.Width, st.Height) {
		return nil, apperrors.New(apperrors.CategoryResolution, s.Name(),
			fmt.Errorf("%w: %dx%d declined", apperrors.ErrInvalidResolution, st.Width, st.Height))
	}
	return st, nil
}

// ── Resolve ───────────────────────────────────────────────────────────────────

// ResolveStep maps the decoder's layout and depth onto a pixel format.
type ResolveStep struct{}

func (s *ResolveStep) Name() string { return "resolve" }

func (s *ResolveStep) Execute(ctx context.Context, st *core.ImportState) (*core.ImportState, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	r, ok := core.ResolvePixelFormat(st.Format, st.Layout, st.BitDepth)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryLayout, s.Name(),
			fmt.Errorf("%w: %s %s/%d", apperrors.ErrUnsupportedPixelLayout, st.Format, st.Layout, st.BitDepth))
	}

	out := *st
	out.PixelFormat = r.PixelFormat
	out.TargetLayout = r.Layout
	out.TargetDepth = r.BitDepth
	return &out, nil
}

// ── Fill raw ──────────────────────────────────────────────────────────────────

// FillRawStep allocates the output image and has the decoder fill mip 0.
// With RetainJPEG set, JPEG input is stored still compressed instead.
type FillRawStep struct{}

func (s *FillRawStep) Name() string { return "fill_raw" }

func (s *FillRawStep) Execute(ctx context.Context, st *core.ImportState) (*core.ImportState, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	if !st.PixelFormat.IsValid() {
		return nil, apperrors.New(apperrors.CategoryPipeline, s.Name(), fmt.Errorf("pixel format not resolved"))
	}

	srgb := st.TargetDepth < 16
	img := &core.ImportedImage{}
	if st.Format == core.FormatJPEG && st.Options.RetainJPEG {
		img.InitCompressed(st.Width, st.Height, st.PixelFormat, srgb, core.RawCompressionJPEG, st.Data)
	} else {
		img.Init2DWithParams(st.Width, st.Height, st.PixelFormat, srgb)
		if err := st.Decoder.FillRaw(st.TargetLayout, st.TargetDepth, img.RawData); err != nil {
			return nil, apperrors.Wrapf(apperrors.CategoryDecode, s.Name(), apperrors.ErrDecodeFailed, err)
		}
	}
	if h, ok := st.Decoder.(core.CompressionHinter); ok {
		img.CompressionSettings = h.CompressionHint()
	}

	out := *st
	out.Image = img
	return &out, nil
}

// ── Zero alpha ────────────────────────────────────────────────────────────────

// ZeroAlphaStep repairs encoder-discarded color under zero alpha. It only
// runs for PNG input and only when Options.FillPNGZeroAlpha is set.
type ZeroAlphaStep struct{}

func (s *ZeroAlphaStep) Name() string { return "zero_alpha" }

func (s *ZeroAlphaStep) Execute(ctx context.Context, st *core.ImportState) (*core.ImportState, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	img := st.Image
	if st.Format != core.FormatPNG || !st.Options.FillPNGZeroAlpha || img == nil ||
		img.RawDataCompression != core.RawCompressionNone || !fill.Supports(img.Format) {
		return st, nil
	}

	mip, err := img.MipData(0)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, s.Name(), err)
	}
	fill.ZeroAlpha(img.Width, img.Height, img.Format, mip)

	out := *st
	out.ZeroAlphaFilled = true
	return &out, nil
}
