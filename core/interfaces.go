package core

import (
	"context"
)

// FormatDecoder wraps one external codec. A decoder is stateful: after
// SetCompressed it reports the header fields and can fill raw samples.
// Detect must not depend on that state so a registry can probe with a shared
// instance. Implementations live in adapters/decoder/.
type FormatDecoder interface {
	Format() Format
	// Detect reports whether data starts with this format's signature.
	Detect(data []byte) bool
	// SetCompressed parses the header of data and keeps a reference to it.
	SetCompressed(data []byte) error
	Width() int
	Height() int
	BitDepth() int
	Layout() ChannelLayout
	// FillRaw decodes the pixels into dst, which is exactly
	// Width*Height*bytes-per-pixel long, converting to layout and depth.
	FillRaw(layout ChannelLayout, depth int, dst []byte) error
}

// CompressionHinter is implemented by decoders that know a better
// CompressionSettings value than the default.
type CompressionHinter interface {
	CompressionHint() CompressionSettings
}

// DecoderFactory returns a fresh decoder for a single import.
type DecoderFactory func() FormatDecoder

// Registry is the ordered sniff table. The first registered decoder whose
// Detect accepts the bytes wins.
type Registry interface {
	Register(f DecoderFactory)
	Sniff(data []byte) (FormatDecoder, bool)
	Formats() []Format
}

// PreviewEncoder serialises an ImportedImage into a viewable file format.
// Implementations live in adapters/encoder/.
type PreviewEncoder interface {
	Encode(ctx context.Context, img *ImportedImage) ([]byte, error)
}

// ImageStore persists imported images and retrieves them later.
// Implementations live in adapters/storage/.
type ImageStore interface {
	Put(ctx context.Context, key StorageKey, img *ImportedImage) error
	Get(ctx context.Context, key StorageKey) (*ImportedImage, error)
	Delete(ctx context.Context, key StorageKey) error
	Exists(ctx context.Context, key StorageKey) (bool, error)
}

// MetricsCollector receives performance observations from the pipeline.
type MetricsCollector interface {
	RecordProcessingTime(stepName string, d interface{ Seconds() float64 })
	RecordThroughput(bytes int64)
	RecordMemory(bytes int64)
	RecordError(stepName string, category string)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}
