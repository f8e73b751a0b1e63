package utils

import (
	"bytes"
	"context"
	"io"
	"sync"

	apperrors "github.com/Skryldev/texture-import/errors"
)

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// AcquireBuffer returns a reset buffer from the pool.
func AcquireBuffer() *bytes.Buffer {
	b := bufPool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

// Buffers above maxPooled are dropped instead of pooled. Size hints above
// maxSizeHint are ignored.
const (
	maxPooled   = 8 << 20
	maxSizeHint = 256 << 20
)

// ReleaseBuffer returns b to the pool. Callers must not use b after this call.
func ReleaseBuffer(b *bytes.Buffer) {
	if b.Cap() > maxPooled {
		return
	}
	bufPool.Put(b)
}

// DrainReader reads all bytes from r into a pooled buffer and returns them.
// sizeHint, when positive, presizes the buffer so encoded images are not
// copied on growth. The caller owns the returned buffer; pass it back with
// ReleaseBuffer.
func DrainReader(ctx context.Context, r io.Reader, chunkSize int, sizeHint int64) (*bytes.Buffer, error) {
	if chunkSize <= 0 {
		chunkSize = 32 * 1024
	}
	buf := AcquireBuffer()
	if sizeHint > 0 && sizeHint <= maxSizeHint {
		buf.Grow(int(sizeHint))
	}
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			ReleaseBuffer(buf)
			return nil, err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			ReleaseBuffer(buf)
			return nil, err
		}
	}
	return buf, nil
}

// LimitedReader wraps r and fails with ErrInputTooLarge once more than Max
// bytes have been produced. A stream of exactly Max bytes is accepted.
type LimitedReader struct {
	R   io.Reader
	Max int64
	n   int64
}

func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Max <= 0 {
		return l.R.Read(p)
	}
	if l.n > l.Max {
		return 0, apperrors.ErrInputTooLarge
	}
	// read one byte past the limit so overflow is observable
	if remain := l.Max - l.n + 1; int64(len(p)) > remain {
		p = p[:remain]
	}
	n, err := l.R.Read(p)
	l.n += int64(n)
	if l.n > l.Max {
		return n - int(l.n-l.Max), apperrors.ErrInputTooLarge
	}
	return n, err
}
