// Package textureimport turns encoded image bytes (PNG, JPEG, WebP, BMP, TIFF,
// QOI, TGA) into normalized raw pixel buffers ready for GPU upload.
package textureimport

import (
	"context"
	"errors"
	"io"

	"github.com/Skryldev/texture-import/adapters/decoder"
	"github.com/Skryldev/texture-import/config"
	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/pipeline"
	"github.com/Skryldev/texture-import/utils"
)

// Re-export Format constants for convenience.
const (
	PNG  = core.FormatPNG
	JPEG = core.FormatJPEG
	WebP = core.FormatWebP
	BMP  = core.FormatBMP
	TIFF = core.FormatTIFF
	QOI  = core.FormatQOI
	TGA  = core.FormatTGA
)

// DefaultConfig returns a sensible production configuration.
func DefaultConfig() config.Config { return config.Default() }

// Processor is the primary entry point.
type Processor struct {
	cfg   config.Config
	inner *core.Processor
	reg   *core.DefaultRegistry
	pipe  *pipeline.Pipeline
}

// New creates a fully wired Processor with every built-in decoder registered
// in sniff order. Pass a custom config.Config to override defaults.
func New(cfg config.Config) *Processor {
	reg := core.NewRegistry()
	for _, f := range decoder.Defaults() {
		reg.Register(f)
	}
	pipe := pipeline.Import(reg)
	return &Processor{
		cfg:   cfg,
		inner: core.New(cfg, reg, pipe),
		reg:   reg,
		pipe:  pipe,
	}
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l core.Logger) { p.inner.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m core.MetricsCollector) { p.inner.SetMetrics(m) }

// AddHook registers an observer for import step events.
func (p *Processor) AddHook(h core.Hook) { p.inner.AddHook(h) }

// Use appends custom steps after zero_alpha. Call before the first import.
func (p *Processor) Use(steps ...core.Step) { p.pipe.Use(steps...) }

// RegisterDecoder appends a decoder to the sniff table. Registering a format
// that is already present replaces it in place.
func (p *Processor) RegisterDecoder(f core.DecoderFactory) { p.reg.Register(f) }

// Registry exposes the sniff table, e.g. for adapters/vips.
func (p *Processor) Registry() core.Registry { return p.reg }

// Steps lists the import step names in execution order.
func (p *Processor) Steps() []string { return p.pipe.Steps() }

// Start starts the background worker pool.
func (p *Processor) Start() { p.inner.Start() }

// Stop drains and shuts down the worker pool.
func (p *Processor) Stop() { p.inner.Stop() }

// Import reads src and returns the imported image with the configured options.
func (p *Processor) Import(ctx context.Context, src core.Source) (*core.ImportResult, error) {
	return p.inner.Import(ctx, src)
}

// ImportWith is Import with explicit per-call options.
func (p *Processor) ImportWith(ctx context.Context, src core.Source, opts core.ImportOptions) (*core.ImportResult, error) {
	return p.inner.ImportWith(ctx, src, opts)
}

// ImportBytes imports an in-memory buffer. data is never modified.
func (p *Processor) ImportBytes(ctx context.Context, name string, data []byte) (*core.ImportResult, error) {
	return p.inner.ImportBytes(ctx, name, data)
}

// Batch imports multiple sources concurrently.
func (p *Processor) Batch(ctx context.Context, sources []core.Source) ([]*core.ImportResult, []error) {
	return p.inner.Batch(ctx, sources)
}

// Submit enqueues an async job for the worker pool.
func (p *Processor) Submit(job core.Job) error { return p.inner.Submit(job) }

// Options returns the import policy derived from the configuration.
func (p *Processor) Options() core.ImportOptions { return p.inner.Options() }

// Stats returns lightweight processing statistics.
func (p *Processor) Stats() (processed, failed int64) {
	return p.inner.ProcessedCount(), p.inner.ErrorCount()
}

// ── Probe ─────────────────────────────────────────────────────────────────────

// ProbeInfo is what the header alone says about an input. No pixels are
// decoded.
type ProbeInfo struct {
	Format   core.Format
	Width    int
	Height   int
	BitDepth int
	Layout   core.ChannelLayout

	// PixelFormat is PixelFormatInvalid when the catalog has no mapping.
	PixelFormat core.PixelFormat
	SRGB        bool

	// ValidResolution is the validator verdict under the configured options.
	ValidResolution bool
	// Oversized means a UI would ask before importing.
	Oversized bool
}

// Probe reads src and reports header information.
func (p *Processor) Probe(ctx context.Context, src core.Source) (*ProbeInfo, error) {
	if src.Reader == nil {
		return nil, apperrors.New(apperrors.CategoryInput, "probe.read", apperrors.ErrEmptyInput)
	}
	r := src.Reader
	if p.cfg.MaxImageBytes > 0 {
		r = &utils.LimitedReader{R: r, Max: p.cfg.MaxImageBytes}
	}
	buf, err := utils.DrainReader(ctx, r, p.cfg.ChunkSize, src.Size)
	if err != nil {
		if errors.Is(err, apperrors.ErrInputTooLarge) {
			return nil, apperrors.Wrap(apperrors.CategoryInput, "probe.read", err)
		}
		return nil, apperrors.Wrap(apperrors.CategoryIO, "probe.read", err)
	}
	defer utils.ReleaseBuffer(buf)
	return p.ProbeBytes(ctx, buf.Bytes())
}

// ProbeBytes runs the sniff and header steps over data.
func (p *Processor) ProbeBytes(ctx context.Context, data []byte) (*ProbeInfo, error) {
	probe := pipeline.New().Use(&pipeline.SniffStep{Registry: p.reg}, &pipeline.HeaderStep{})
	st, _, err := probe.Run(ctx, &core.ImportState{Data: data, Options: p.inner.Options()})
	if err != nil {
		return nil, err
	}

	opts := st.Options
	info := &ProbeInfo{
		Format:          st.Format,
		Width:           st.Width,
		Height:          st.Height,
		BitDepth:        st.BitDepth,
		Layout:          st.Layout,
		ValidResolution: core.ValidateResolution(st.Width, st.Height, opts.AllowNonPowerOfTwo, opts.MaxResolution),
		Oversized:       core.IsOversized(st.Width, st.Height, opts.MaxResolution),
	}
	if res, ok := core.ResolvePixelFormat(st.Format, st.Layout, st.BitDepth); ok {
		info.PixelFormat = res.PixelFormat
		info.SRGB = res.SRGB
	}
	return info, nil
}

// ── Source constructors ───────────────────────────────────────────────────────

// FromReader creates a Source from an io.Reader.
func FromReader(r io.Reader) core.Source { return core.Source{Reader: r, Size: -1} }

// FromReaderWithMeta creates a Source with a known size and name.
func FromReaderWithMeta(r io.Reader, size int64, name string) core.Source {
	return core.Source{Reader: r, Size: size, Name: name}
}

// FromBytes creates a Source over an in-memory buffer.
func FromBytes(name string, data []byte) core.Source {
	return core.Source{Reader: utils.BytesReader(data), Size: int64(len(data)), Name: name}
}
