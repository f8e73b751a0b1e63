package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategoryFormat     Category = "format"     // no decoder matched the sniffed bytes
	CategoryDecode     Category = "decode"     // decoder accepted the format but failed
	CategoryLayout     Category = "layout"     // channel layout / bit depth has no pixel format
	CategoryResolution Category = "resolution" // rejected by the resolution validator
	CategoryIO         Category = "io"         // reading the source failed
	CategoryPipeline   Category = "pipeline"
	CategoryConfig     Category = "config"
	CategoryInput      Category = "input"
)

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category Category
	Op       string // stage or operation name
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Wrap wraps an existing error with context.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// Wrapf wraps err under sentinel so that both errors.Is(result, sentinel) and
// the original cause survive.
func Wrapf(category Category, op string, sentinel, err error) error {
	if err == nil {
		return New(category, op, sentinel)
	}
	return New(category, op, fmt.Errorf("%w: %w", sentinel, err))
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	return CategoryOf(err) == cat
}

// CategoryOf returns the category of the outermost ProcessingError in err's
// chain, or "" when there is none.
func CategoryOf(err error) Category {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat      = errors.New("unsupported image format")
	ErrDecodeFailed           = errors.New("decode failed")
	ErrUnsupportedPixelLayout = errors.New("unsupported pixel layout")
	ErrInvalidResolution      = errors.New("invalid resolution")
	ErrEmptyInput             = errors.New("empty input")
	ErrInputTooLarge          = errors.New("input exceeds size limit")
	ErrWorkerPoolFull         = errors.New("worker pool queue full")
)
