package hooks_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/hooks"
)

func TestMetricsHook(t *testing.T) {
	m := hooks.NewInMemoryMetrics()
	h := hooks.NewMetricsHook(m)
	ctx := context.Background()

	h.AfterStep(ctx, "sniff", &core.ImportState{}, 2*time.Millisecond, nil)
	h.AfterStep(ctx, "sniff", nil, time.Millisecond,
		apperrors.New(apperrors.CategoryFormat, "sniff", apperrors.ErrUnsupportedFormat))
	h.AfterStep(ctx, "header", nil, 0, errors.New("plain"))
	m.RecordThroughput(100)
	m.RecordMemory(64)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.StepCalls["sniff"])
	assert.Equal(t, int64(1), snap.StepErrors["sniff"])
	assert.Equal(t, int64(1), snap.ErrorCategories["format"])
	assert.Equal(t, int64(1), snap.ErrorCategories["pipeline"])
	assert.Equal(t, int64(3), snap.StepDurationsMs["sniff"])
	assert.Equal(t, int64(100), snap.TotalThroughputB)
	assert.Equal(t, int64(64), snap.TotalMemoryB)

	// snapshots are copies
	snap.StepCalls["sniff"] = 99
	assert.Equal(t, int64(2), m.Snapshot().StepCalls["sniff"])
}

func TestLoggingHook(t *testing.T) {
	var buf bytes.Buffer
	logger := hooks.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	h := hooks.NewLoggingHook(logger)
	ctx := context.Background()

	st := &core.ImportState{Name: "a.png", Data: []byte{1}, Format: core.FormatPNG, Width: 4, Height: 2, PixelFormat: core.PixelFormatBGRA8}
	h.BeforeStep(ctx, "resolve", st)
	h.AfterStep(ctx, "resolve", st, time.Millisecond, nil)
	h.AfterStep(ctx, "fill_raw", nil, time.Millisecond,
		apperrors.New(apperrors.CategoryDecode, "fill_raw", apperrors.ErrDecodeFailed))

	out := buf.String()
	assert.Contains(t, out, "import.step.start")
	assert.Contains(t, out, "pixel_format=BGRA8")
	assert.Contains(t, out, "import.step.error")
	assert.Contains(t, out, "category=decode")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, hooks.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, hooks.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, hooks.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, hooks.ParseLevel(""))
}
