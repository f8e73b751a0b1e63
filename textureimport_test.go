package textureimport_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	textureimport "github.com/Skryldev/texture-import"
	"github.com/Skryldev/texture-import/config"
	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/hooks"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func newRedJPEG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

// newHolePNG is one opaque pixel followed by a fully transparent white one.
func newHolePNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	return encodePNG(t, img)
}

func newProc(t testing.TB) *textureimport.Processor {
	t.Helper()
	cfg := textureimport.DefaultConfig()
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	p := textureimport.New(cfg)
	p.Start()
	t.Cleanup(p.Stop)
	return p
}

// ── Unit tests ────────────────────────────────────────────────────────────────

func TestImport_PNG_BGRA8(t *testing.T) {
	proc := newProc(t)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}

	result, err := proc.Import(context.Background(),
		textureimport.FromReader(bytes.NewReader(encodePNG(t, img))))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	got := result.Image
	if result.Format != textureimport.PNG {
		t.Errorf("format: got %s, want png", result.Format)
	}
	if got.Format != core.PixelFormatBGRA8 || got.Width != 4 || got.Height != 4 || got.NumMips != 1 {
		t.Fatalf("image: got %s %dx%d mips=%d", got.Format, got.Width, got.Height, got.NumMips)
	}
	if !got.SRGB {
		t.Error("8-bit import should be sRGB")
	}
	if len(got.RawData) != 4*4*4 {
		t.Fatalf("raw size: got %d, want 64", len(got.RawData))
	}
	// pixel 1 is RGBA 4,5,6,7 in the source
	if p := got.RawData[4:8]; !bytes.Equal(p, []byte{6, 5, 4, 7}) {
		t.Errorf("pixel 1: got %v, want [6 5 4 7]", p)
	}
}

func TestImport_PNG_ZeroAlphaFill(t *testing.T) {
	proc := newProc(t)

	result, err := proc.ImportBytes(context.Background(), "hole.png", newHolePNG(t))
	if err != nil {
		t.Fatalf("ImportBytes: %v", err)
	}
	want := []byte{30, 20, 10, 255, 30, 20, 10, 0}
	if !bytes.Equal(result.Image.RawData, want) {
		t.Errorf("raw: got %v, want %v", result.Image.RawData, want)
	}
}

func TestImport_PNG_ZeroAlphaFillDisabled(t *testing.T) {
	proc := newProc(t)
	opts := proc.Options()
	opts.FillPNGZeroAlpha = false

	result, err := proc.ImportWith(context.Background(), textureimport.FromBytes("hole.png", newHolePNG(t)), opts)
	if err != nil {
		t.Fatalf("ImportWith: %v", err)
	}
	want := []byte{30, 20, 10, 255, 255, 255, 255, 0}
	if !bytes.Equal(result.Image.RawData, want) {
		t.Errorf("raw: got %v, want %v", result.Image.RawData, want)
	}
}

func TestImport_JPEG(t *testing.T) {
	proc := newProc(t)

	result, err := proc.Import(context.Background(),
		textureimport.FromReader(bytes.NewReader(newRedJPEG(t, 16, 8))))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Format != textureimport.JPEG {
		t.Errorf("format: got %s, want jpeg", result.Format)
	}
	if result.Image.Format != core.PixelFormatBGRA8 {
		t.Errorf("pixel format: got %s, want BGRA8", result.Image.Format)
	}
	b, g, r, a := result.Image.RawData[0], result.Image.RawData[1], result.Image.RawData[2], result.Image.RawData[3]
	if a != 255 || r < 180 || g > 80 || b > 80 {
		t.Errorf("first pixel BGRA: %d %d %d %d, want roughly 50 50 200 255", b, g, r, a)
	}
}

func TestImport_GrayPNG(t *testing.T) {
	proc := newProc(t)
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(img.Pix, []byte{0, 64, 128, 255})

	result, err := proc.ImportBytes(context.Background(), "", encodePNG(t, img))
	if err != nil {
		t.Fatalf("ImportBytes: %v", err)
	}
	if result.Image.Format != core.PixelFormatG8 {
		t.Fatalf("pixel format: got %s, want G8", result.Image.Format)
	}
	if !bytes.Equal(result.Image.RawData, []byte{0, 64, 128, 255}) {
		t.Errorf("raw: got %v", result.Image.RawData)
	}
}

func TestImport_PNG16_RGBA16(t *testing.T) {
	proc := newProc(t)
	img := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	img.SetNRGBA64(0, 0, color.NRGBA64{R: 0x0102, G: 0x0304, B: 0x0506, A: 0xFFFF})

	result, err := proc.ImportBytes(context.Background(), "", encodePNG(t, img))
	if err != nil {
		t.Fatalf("ImportBytes: %v", err)
	}
	if result.Image.Format != core.PixelFormatRGBA16 {
		t.Fatalf("pixel format: got %s, want RGBA16", result.Image.Format)
	}
	if result.Image.SRGB {
		t.Error("16-bit import must not be sRGB")
	}
	want := []byte{0x02, 0x01, 0x04, 0x03, 0x06, 0x05, 0xFF, 0xFF}
	if !bytes.Equal(result.Image.RawData, want) {
		t.Errorf("raw: got %x, want %x", result.Image.RawData, want)
	}
}

func TestImport_InputNotModified(t *testing.T) {
	proc := newProc(t)
	raw := newHolePNG(t)
	orig := append([]byte(nil), raw...)

	if _, err := proc.ImportBytes(context.Background(), "", raw); err != nil {
		t.Fatalf("ImportBytes: %v", err)
	}
	if !bytes.Equal(raw, orig) {
		t.Error("input bytes were modified")
	}
}

// ── Error kinds ───────────────────────────────────────────────────────────────

func TestImport_Errors(t *testing.T) {
	strict := textureimport.DefaultConfig()
	strict.AllowNonPowerOfTwo = false

	small := textureimport.DefaultConfig()
	small.MaxImageBytes = 16

	npot := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 3, 3)))
	truncated := newHolePNG(t)[:40]

	tests := []struct {
		name     string
		cfg      config.Config
		data     []byte
		category apperrors.Category
		sentinel error
	}{
		{"unknown", textureimport.DefaultConfig(), []byte("this is definitely not an image file"), apperrors.CategoryFormat, apperrors.ErrUnsupportedFormat},
		{"empty", textureimport.DefaultConfig(), nil, apperrors.CategoryInput, apperrors.ErrEmptyInput},
		{"npot", strict, npot, apperrors.CategoryResolution, apperrors.ErrInvalidResolution},
		{"too large", small, npot, apperrors.CategoryInput, apperrors.ErrInputTooLarge},
		{"truncated", textureimport.DefaultConfig(), truncated, apperrors.CategoryDecode, apperrors.ErrDecodeFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			proc := textureimport.New(tc.cfg)
			res, err := proc.Import(context.Background(), textureimport.FromBytes(tc.name, tc.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if res != nil {
				t.Error("result must be nil on failure")
			}
			if !apperrors.IsCategory(err, tc.category) {
				t.Errorf("category: got %q, want %q (%v)", apperrors.CategoryOf(err), tc.category, err)
			}
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tc.sentinel)
			}
		})
	}
}

func TestImport_ContextCancel(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := proc.Import(ctx, textureimport.FromReader(bytes.NewReader(raw)))
	if err == nil {
		t.Error("expected context cancellation error, got nil")
	}
}

func TestImport_OversizedDeclined(t *testing.T) {
	cfg := textureimport.DefaultConfig()
	cfg.MaxResolution = 4
	proc := textureimport.New(cfg)

	opts := proc.Options()
	var asked atomic.Bool
	opts.ConfirmOversized = func(w, h int) bool {
		asked.Store(true)
		return false
	}
	// 8x2 exceeds 4 on one axis but its area fits in 4*4
	data := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 8, 2)))
	_, err := proc.ImportWith(context.Background(), textureimport.FromBytes("wide", data), opts)
	if !errors.Is(err, apperrors.ErrInvalidResolution) {
		t.Errorf("got %v, want ErrInvalidResolution", err)
	}
	if !asked.Load() {
		t.Error("ConfirmOversized was not consulted")
	}
}

// ── Probe ─────────────────────────────────────────────────────────────────────

func TestProbe(t *testing.T) {
	proc := newProc(t)
	img := image.NewGray16(image.Rect(0, 0, 32, 16))

	info, err := proc.Probe(context.Background(), textureimport.FromReader(bytes.NewReader(encodePNG(t, img))))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Format != textureimport.PNG || info.Width != 32 || info.Height != 16 {
		t.Errorf("probe: got %s %dx%d", info.Format, info.Width, info.Height)
	}
	if info.BitDepth != 16 || info.Layout != core.LayoutGray || info.PixelFormat != core.PixelFormatG16 {
		t.Errorf("probe: got depth %d layout %s pixel format %s", info.BitDepth, info.Layout, info.PixelFormat)
	}
	if !info.ValidResolution || info.Oversized {
		t.Errorf("probe: valid=%v oversized=%v", info.ValidResolution, info.Oversized)
	}
}

func TestProbe_Unknown(t *testing.T) {
	proc := newProc(t)
	_, err := proc.ProbeBytes(context.Background(), []byte("plain text, nothing to see"))
	if !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
}

func TestSteps(t *testing.T) {
	proc := newProc(t)
	want := []string{"sniff", "header", "validate", "resolve", "fill_raw", "zero_alpha"}
	got := proc.Steps()
	if len(got) != len(want) {
		t.Fatalf("steps: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

// ── Concurrency tests ─────────────────────────────────────────────────────────

func TestImport_ConcurrentSafety(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 64, 64)
	hole := newHolePNG(t)

	const goroutines = 20
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			data := raw
			if idx%2 == 1 {
				data = hole
			}
			_, errs[idx] = proc.ImportBytes(context.Background(), "", data)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: %v", i, err)
		}
	}
	if processed, failed := proc.Stats(); processed != goroutines || failed != 0 {
		t.Errorf("stats: processed=%d failed=%d", processed, failed)
	}
}

// ── Batch test ────────────────────────────────────────────────────────────────

func TestBatch(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 32, 32)

	sources := make([]core.Source, 5)
	for i := range sources {
		sources[i] = textureimport.FromReader(bytes.NewReader(raw))
	}
	sources[3] = textureimport.FromBytes("junk", []byte("definitely not an image"))

	results, errs := proc.Batch(context.Background(), sources)

	for i, err := range errs {
		if i == 3 {
			if err == nil || results[i] != nil {
				t.Errorf("batch[3]: expected failure, got result=%v err=%v", results[i], err)
			}
			continue
		}
		if err != nil {
			t.Errorf("batch[%d]: %v", i, err)
		}
		if results[i] == nil {
			t.Errorf("batch[%d]: nil result", i)
		}
	}
}

// ── Async worker pool test ────────────────────────────────────────────────────

func TestWorkerPool_Async(t *testing.T) {
	proc := newProc(t)
	raw := newRedJPEG(t, 32, 16)

	resultCh := make(chan core.JobResult, 1)
	job := core.Job{
		ID:       "test-job-1",
		Ctx:      context.Background(),
		Source:   textureimport.FromReader(bytes.NewReader(raw)),
		ResultCh: resultCh,
	}

	if err := proc.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case res := <-resultCh:
		if res.Err != nil {
			t.Fatalf("async job error: %v", res.Err)
		}
		if res.JobID != "test-job-1" {
			t.Errorf("job id: got %q", res.JobID)
		}
		if res.Result.Image.Width != 32 {
			t.Errorf("async width: got %d, want 32", res.Result.Image.Width)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("async job timed out")
	}
}

func TestSubmitAfterStop(t *testing.T) {
	proc := textureimport.New(textureimport.DefaultConfig())
	proc.Start()
	proc.Stop()

	err := proc.Submit(core.Job{Source: textureimport.FromBytes("", newHolePNG(t))})
	if !errors.Is(err, apperrors.ErrWorkerPoolFull) {
		t.Errorf("got %v, want ErrWorkerPoolFull", err)
	}
}

// ── Hooks /Metrics test ──────────────────────────────────────────────────────

func TestMetricsHook(t *testing.T) {
	m := hooks.NewInMemoryMetrics()
	hook := hooks.NewMetricsHook(m)

	proc := newProc(t)
	proc.AddHook(hook)
	proc.SetMetrics(m)

	if _, err := proc.ImportBytes(context.Background(), "", newHolePNG(t)); err != nil {
		t.Fatalf("ImportBytes: %v", err)
	}
	_, _ = proc.ImportBytes(context.Background(), "", []byte("not an image at all"))

	snap := m.Snapshot()
	if snap.StepCalls["zero_alpha"] != 1 {
		t.Errorf("zero_alpha calls: got %d, want 1", snap.StepCalls["zero_alpha"])
	}
	if snap.StepErrors["sniff"] != 1 {
		t.Errorf("sniff errors: got %d, want 1", snap.StepErrors["sniff"])
	}
	if snap.ErrorCategories[string(apperrors.CategoryFormat)] != 1 {
		t.Errorf("format errors: got %v", snap.ErrorCategories)
	}
	if snap.TotalMemoryB != 8 {
		t.Errorf("memory: got %d, want 8", snap.TotalMemoryB)
	}
}

// ── Custom step test ──────────────────────────────────────────────────────────

// countTransparentStep counts imported pixels whose alpha is zero.
type countTransparentStep struct{ transparent atomic.Int64 }

func (s *countTransparentStep) Name() string { return "count_transparent" }

func (s *countTransparentStep) Execute(_ context.Context, st *core.ImportState) (*core.ImportState, error) {
	if st.Image == nil || st.Image.Format != core.PixelFormatBGRA8 {
		return st, nil
	}
	for i := 3; i < len(st.Image.RawData); i += 4 {
		if st.Image.RawData[i] == 0 {
			s.transparent.Add(1)
		}
	}
	return st, nil
}

func TestCustomStep(t *testing.T) {
	cfg := textureimport.DefaultConfig()
	proc := textureimport.New(cfg)
	step := &countTransparentStep{}
	proc.Use(step)

	result, err := proc.ImportBytes(context.Background(), "", newHolePNG(t))
	if err != nil {
		t.Fatalf("ImportBytes with custom step: %v", err)
	}
	if step.transparent.Load() != 1 {
		t.Errorf("transparent pixels: got %d, want 1", step.transparent.Load())
	}
	if _, ok := result.StepTimings["count_transparent"]; !ok {
		t.Error("custom step timing missing")
	}
}

// ── Config validation test ────────────────────────────────────────────────────

func TestConfigValidation(t *testing.T) {
	cfg := config.Default()
	cfg.MaxResolution = 0 // invalid
	if err := config.Validate(cfg); err == nil {
		t.Error("expected validation error for MaxResolution=0")
	}
}

// ── Benchmarks ────────────────────────────────────────────────────────────────

func BenchmarkImport_JPEG_1920x1080(b *testing.B) {
	cfg := textureimport.DefaultConfig()
	proc := textureimport.New(cfg)
	raw := newRedJPEG(b, 1920, 1080)

	b.ReportAllocs()
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := proc.ImportBytes(context.Background(), "", raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkImport_PNG_ZeroAlpha_1024(b *testing.B) {
	img := image.NewNRGBA(image.Rect(0, 0, 1024, 1024))
	for y := 0; y < 1024; y++ {
		for x := 0; x < 1024; x++ {
			if (x/16+y/16)%2 == 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
			}
		}
	}
	raw := encodePNG(b, img)
	proc := textureimport.New(textureimport.DefaultConfig())

	b.ReportAllocs()
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := proc.ImportBytes(context.Background(), "", raw); err != nil {
			b.Fatal(err)
		}
	}
}
