// Package vips adds a libvips-backed fallback decoder for formats that have
// no native adapter (GIF, HEIF, AVIF, JPEG 2000, SVG and friends).
package vips

import (
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"
	"github.com/pkg/errors"

	"github.com/Skryldev/texture-import/adapters/decoder"
	"github.com/Skryldev/texture-import/core"
)

// BackendConfig configures the libvips runtime.
type BackendConfig struct {
	MaxCacheSize int
	MaxWorkers   int
	ReportLeaks  bool
}

// Backend owns the libvips runtime. Safe for concurrent use across goroutines.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.LoggingSettings(nil, govips.LogLevelError)
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// Decoder returns a fresh fallback decoder bound to this backend.
func (b *Backend) Decoder() core.FormatDecoder { return &Decoder{png: decoder.NewPNG()} }

// Register appends the fallback decoder to reg. Register it after the native
// adapters so it only sees bytes none of them claimed.
func (b *Backend) Register(reg core.Registry) {
	reg.Register(b.Decoder)
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

// Decoder loads anything libvips understands and re-expresses it as a
// lossless PNG, which the native PNG adapter then reads. Header fields and
// pixels therefore follow the PNG adapter's layout and depth rules.
type Decoder struct {
	png    *decoder.PNG
	source govips.ImageType
}

func (d *Decoder) Format() core.Format { return core.FormatVips }

// Detect accepts every signature libvips recognises.
func (d *Decoder) Detect(data []byte) bool {
	return govips.DetermineImageType(data) != govips.ImageTypeUnknown
}

func (d *Decoder) SetCompressed(data []byte) error {
	if len(data) == 0 {
		return errors.New("vips: empty input")
	}
	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return errors.Wrap(err, "vips: load")
	}
	defer ref.Close()

	d.source = ref.Format()
	buf, _, err := ref.ExportPng(govips.NewPngExportParams())
	if err != nil {
		return errors.Wrapf(err, "vips: transcode %s", govips.ImageTypes[d.source])
	}
	return d.png.SetCompressed(buf)
}

// SourceType is the libvips image type seen by the last SetCompressed.
func (d *Decoder) SourceType() string { return govips.ImageTypes[d.source] }

func (d *Decoder) Width() int                 { return d.png.Width() }
func (d *Decoder) Height() int                { return d.png.Height() }
func (d *Decoder) BitDepth() int              { return d.png.BitDepth() }
func (d *Decoder) Layout() core.ChannelLayout { return d.png.Layout() }

func (d *Decoder) FillRaw(layout core.ChannelLayout, depth int, dst []byte) error {
	return d.png.FillRaw(layout, depth, dst)
}

var _ core.FormatDecoder = (*Decoder)(nil)
