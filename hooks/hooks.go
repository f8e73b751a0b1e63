// Package hooks provides production-ready Hook and Logger implementations.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
)

// ── Structured logger adapter ─────────────────────────────────────────────────

// SlogLogger wraps the standard library slog.Logger to satisfy core.Logger.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger creates a logger backed by slog.
func NewSlogLogger(l *slog.Logger) *SlogLogger { return &SlogLogger{log: l} }

func (s *SlogLogger) Debug(msg string, fields ...interface{}) {
	s.log.Debug(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Info(msg string, fields ...interface{}) {
	s.log.Info(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Warn(msg string, fields ...interface{}) {
	s.log.Warn(msg, toAttrs(fields)...)
}
func (s *SlogLogger) Error(msg string, fields ...interface{}) {
	s.log.Error(msg, toAttrs(fields)...)
}

func toAttrs(fields []interface{}) []any { return fields }

// ParseLevel maps a config log level onto slog. Unknown values yield Info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ── Logging hook ──────────────────────────────────────────────────────────────

// LoggingHook logs before/after each import step.
type LoggingHook struct {
	logger core.Logger
}

// NewLoggingHook creates a LoggingHook.
func NewLoggingHook(l core.Logger) *LoggingHook { return &LoggingHook{logger: l} }

func (h *LoggingHook) BeforeStep(_ context.Context, stepName string, st *core.ImportState) {
	h.logger.Debug("import.step.start",
		"step", stepName,
		"name", st.Name,
		"bytes", len(st.Data),
	)
}

func (h *LoggingHook) AfterStep(_ context.Context, stepName string, st *core.ImportState, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("import.step.error",
			"step", stepName,
			"duration_ms", d.Milliseconds(),
			"category", string(apperrors.CategoryOf(err)),
			"error", err.Error(),
		)
		return
	}
	fields := []interface{}{"step", stepName, "duration_ms", d.Milliseconds()}
	if st != nil {
		fields = append(fields, "format", st.Format, "width", st.Width, "height", st.Height)
		if st.PixelFormat.IsValid() {
			fields = append(fields, "pixel_format", st.PixelFormat.String())
		}
	}
	h.logger.Debug("import.step.done", fields...)
}

// ── In-memory metrics collector ───────────────────────────────────────────────

// InMemoryMetrics accumulates metrics atomically; safe for concurrent use.
type InMemoryMetrics struct {
	mu sync.RWMutex

	stepDurationsMs map[string]int64 // cumulative ms per step
	stepCalls       map[string]int64 // call count per step
	stepErrors      map[string]int64
	errorCategories map[string]int64

	totalThroughputB int64
	totalMemoryB     int64
}

// NewInMemoryMetrics creates an empty metrics store.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		stepDurationsMs: make(map[string]int64),
		stepCalls:       make(map[string]int64),
		stepErrors:      make(map[string]int64),
		errorCategories: make(map[string]int64),
	}
}

func (m *InMemoryMetrics) RecordProcessingTime(stepName string, d interface{ Seconds() float64 }) {
	ms := int64(d.Seconds() * 1000)
	m.mu.Lock()
	m.stepDurationsMs[stepName] += ms
	m.stepCalls[stepName]++
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordThroughput(bytes int64) {
	atomic.AddInt64(&m.totalThroughputB, bytes)
}

func (m *InMemoryMetrics) RecordMemory(bytes int64) {
	atomic.AddInt64(&m.totalMemoryB, bytes)
}

func (m *InMemoryMetrics) RecordError(stepName string, category string) {
	m.mu.Lock()
	m.stepErrors[stepName]++
	m.errorCategories[category]++
	m.mu.Unlock()
}

// Snapshot returns a copy of current metrics.
func (m *InMemoryMetrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		StepDurationsMs:  copyMap(m.stepDurationsMs),
		StepCalls:        copyMap(m.stepCalls),
		StepErrors:       copyMap(m.stepErrors),
		ErrorCategories:  copyMap(m.errorCategories),
		TotalThroughputB: atomic.LoadInt64(&m.totalThroughputB),
		TotalMemoryB:     atomic.LoadInt64(&m.totalMemoryB),
	}
}

func copyMap(src map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// MetricsSnapshot is an immutable point-in-time copy of metrics.
type MetricsSnapshot struct {
	StepDurationsMs  map[string]int64
	StepCalls        map[string]int64
	StepErrors       map[string]int64
	ErrorCategories  map[string]int64
	TotalThroughputB int64
	TotalMemoryB     int64
}

// ── Metrics hook ──────────────────────────────────────────────────────────────

// MetricsHook feeds pipeline events into a MetricsCollector.
type MetricsHook struct {
	collector core.MetricsCollector
}

// NewMetricsHook creates a MetricsHook.
func NewMetricsHook(c core.MetricsCollector) *MetricsHook { return &MetricsHook{collector: c} }

func (h *MetricsHook) BeforeStep(_ context.Context, _ string, _ *core.ImportState) {}

func (h *MetricsHook) AfterStep(_ context.Context, stepName string, _ *core.ImportState, d time.Duration, err error) {
	h.collector.RecordProcessingTime(stepName, d)
	if err != nil {
		cat := string(apperrors.CategoryOf(err))
		if cat == "" {
			cat = string(apperrors.CategoryPipeline)
		}
		h.collector.RecordError(stepName, cat)
	}
}

var (
	_ core.Hook             = (*LoggingHook)(nil)
	_ core.Hook             = (*MetricsHook)(nil)
	_ core.Logger           = (*SlogLogger)(nil)
	_ core.MetricsCollector = (*InMemoryMetrics)(nil)
)
