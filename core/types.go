package core

import (
	"context"
	"io"
	"time"
)

// Format identifies a source image codec as detected by content sniffing.
type Format string

const (
	FormatPNG     Format = "png"
	FormatJPEG    Format = "jpeg"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatQOI     Format = "qoi"
	FormatTGA     Format = "tga"
	FormatVips    Format = "vips" // anything libvips can load that has no native adapter
	FormatUnknown Format = "unknown"
)

// ChannelLayout describes how samples are ordered in a decoder's output.
type ChannelLayout uint8

const (
	LayoutInvalid ChannelLayout = iota
	LayoutRGBA
	LayoutBGRA
	LayoutGray
)

func (l ChannelLayout) String() string {
	switch l {
	case LayoutRGBA:
		return "RGBA"
	case LayoutBGRA:
		return "BGRA"
	case LayoutGray:
		return "Gray"
	}
	return "Invalid"
}

// ImportOptions are the per-call policy switches. They are read once at the
// start of an import and never consulted from globals.
type ImportOptions struct {
	FillPNGZeroAlpha   bool
	AllowNonPowerOfTwo bool
	MaxResolution      int
	RetainJPEG         bool

	// ConfirmOversized is asked whether an image larger than MaxResolution on
	// some axis, but still inside the area limit, should be imported. A nil
	// callback accepts.
	ConfirmOversized func(width, height int) bool
}

// ImportState is the value threaded through the import steps. Every step
// reads what earlier steps produced and fills in its own fields.
type ImportState struct {
	// Input.
	Data    []byte
	Name    string
	Options ImportOptions

	// Set by sniff.
	Format  Format
	Decoder FormatDecoder

	// Set by header.
	Width    int
	Height   int
	BitDepth int
	Layout   ChannelLayout

	// Set by resolve.
	PixelFormat  PixelFormat
	TargetLayout ChannelLayout
	TargetDepth  int

	// Set by fill_raw.
	Image *ImportedImage

	// Set by zero_alpha.
	ZeroAlphaFilled bool
}

// ImportResult is returned to the caller after the full pipeline completes.
type ImportResult struct {
	Image  *ImportedImage
	Format Format
	Name   string

	// Observability.
	ProcessingTime time.Duration
	StepTimings    map[string]time.Duration
}

// Source abstracts where raw bytes come from. Format detection never looks at
// Name or ContentType.
type Source struct {
	Reader      io.Reader
	ContentType string // informational only
	Name        string // optional logical name / filename
	Size        int64  // -1 if unknown
}

// Job encapsulates a single unit of work for the worker pool.
type Job struct {
	ID      string
	Ctx     context.Context //nolint:containedctx // intentional for async jobs
	Source  Source
	Options *ImportOptions // nil uses the processor's configured options
	// Result channel; nil for fire-and-forget.
	ResultCh chan<- JobResult
}

// JobResult wraps the outcome of an async job.
type JobResult struct {
	JobID  string
	Result *ImportResult
	Err    error
}

// Step is the fundamental pipeline building block. Each Step advances an
// *ImportState and must be safe for concurrent use across goroutines.
type Step interface {
	Name() string
	Execute(ctx context.Context, st *ImportState) (*ImportState, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, st *ImportState)
	AfterStep(ctx context.Context, stepName string, st *ImportState, d time.Duration, err error)
}

// StorageKey uniquely identifies a stored image.
type StorageKey struct {
	Bucket string
	Path   string
}
