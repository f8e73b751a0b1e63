package core

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skryldev/texture-import/config"
	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/utils"
)

// PipelineRunner is a minimal interface over pipeline.Pipeline so that core
// does not import the pipeline package (avoiding a circular dependency).
type PipelineRunner interface {
	Run(ctx context.Context, st *ImportState) (*ImportState, map[string]time.Duration, error)
	AddHook(h Hook)
}

// OptionsFromConfig extracts the per-call import policy from cfg.
func OptionsFromConfig(cfg config.Config) ImportOptions {
	maxRes := cfg.MaxResolution
	if maxRes <= 0 {
		maxRes = config.DefaultMaxResolution
	}
	return ImportOptions{
		FillPNGZeroAlpha:   cfg.FillPNGZeroAlpha,
		AllowNonPowerOfTwo: cfg.AllowNonPowerOfTwo,
		MaxResolution:      maxRes,
		RetainJPEG:         cfg.RetainJPEG,
	}
}

// Processor is the central orchestrator. It is safe for concurrent use: each
// import owns its own state and output buffer.
type Processor struct {
	cfg      config.Config
	opts     ImportOptions
	registry Registry
	runner   PipelineRunner
	logger   Logger
	metrics  MetricsCollector

	// Worker pool.
	jobQueue chan Job
	wg       sync.WaitGroup
	once     sync.Once
	stopOnce sync.Once
	shutdown chan struct{}

	// Atomic counters for lightweight internal metrics.
	processedCount int64
	errorCount     int64
}

// New creates a Processor with the given config. Call Start() before
// submitting jobs; call Stop() when done.
func New(cfg config.Config, reg Registry, runner PipelineRunner) *Processor {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Processor{
		cfg:      cfg,
		opts:     OptionsFromConfig(cfg),
		registry: reg,
		runner:   runner,
		jobQueue: make(chan Job, queueSize),
		shutdown: make(chan struct{}),
	}
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l Logger) { p.logger = l }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m MetricsCollector) { p.metrics = m }

// AddHook registers a pipeline hook. Call before the first import.
func (p *Processor) AddHook(h Hook) { p.runner.AddHook(h) }

// Registry returns the sniff table so callers can register decoders after
// construction.
func (p *Processor) Registry() Registry { return p.registry }

// Options returns the import policy derived from the configuration.
func (p *Processor) Options() ImportOptions { return p.opts }

// Start launches the worker pool. It is idempotent.
func (p *Processor) Start() {
	p.once.Do(func() {
		workerCount := p.cfg.WorkerCount
		if workerCount <= 0 {
			workerCount = runtime.NumCPU()
		}
		for i := 0; i < workerCount; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// Stop shuts down all workers and waits for in-flight jobs. Jobs still queued
// are dropped.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() { close(p.shutdown) })
	p.wg.Wait()
}

// Import reads src fully and runs the import pipeline with the configured
// options.
func (p *Processor) Import(ctx context.Context, src Source) (*ImportResult, error) {
	return p.ImportWith(ctx, src, p.opts)
}

// ImportWith is Import with explicit per-call options.
func (p *Processor) ImportWith(ctx context.Context, src Source, opts ImportOptions) (*ImportResult, error) {
	if src.Reader == nil {
		atomic.AddInt64(&p.errorCount, 1)
		return nil, apperrors.New(apperrors.CategoryInput, "import.read", apperrors.ErrEmptyInput)
	}

	// --- 1. Drain source into memory (respecting max size limit) -------------
	limitedR := src.Reader
	if p.cfg.MaxImageBytes > 0 {
		limitedR = &utils.LimitedReader{R: src.Reader, Max: p.cfg.MaxImageBytes}
	}

	buf, err := utils.DrainReader(ctx, limitedR, p.cfg.ChunkSize, src.Size)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		switch {
		case errors.Is(err, apperrors.ErrInputTooLarge):
			return nil, apperrors.Wrap(apperrors.CategoryInput, "import.read", err)
		case ctx.Err() != nil:
			return nil, apperrors.Wrap(apperrors.CategoryPipeline, "import.read", err)
		}
		return nil, apperrors.Wrap(apperrors.CategoryIO, "import.read", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)

	return p.importBytes(ctx, src.Name, raw, opts)
}

// ImportBytes runs the pipeline over an in-memory buffer. data is not
// modified and may be reused by the caller after return.
func (p *Processor) ImportBytes(ctx context.Context, name string, data []byte) (*ImportResult, error) {
	return p.importBytes(ctx, name, data, p.opts)
}

func (p *Processor) importBytes(ctx context.Context, name string, data []byte, opts ImportOptions) (*ImportResult, error) {
	if len(data) == 0 {
		atomic.AddInt64(&p.errorCount, 1)
		return nil, apperrors.New(apperrors.CategoryInput, "import", apperrors.ErrEmptyInput)
	}

	start := time.Now()
	st := &ImportState{Data: data, Name: name, Options: opts}

	out, timings, err := p.runner.Run(ctx, st)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		if p.logger != nil {
			p.logger.Warn("import.failed", "name", name, "bytes", len(data), "error", err.Error())
		}
		return nil, err
	}

	atomic.AddInt64(&p.processedCount, 1)
	if p.metrics != nil {
		p.metrics.RecordThroughput(int64(len(data)))
		p.metrics.RecordMemory(int64(len(out.Image.RawData)))
	}
	total := time.Since(start)
	if p.logger != nil {
		p.logger.Info("import.done",
			"name", name,
			"format", out.Format,
			"width", out.Image.Width,
			"height", out.Image.Height,
			"pixel_format", out.Image.Format.String(),
			"duration_ms", total.Milliseconds(),
		)
	}

	return &ImportResult{
		Image:          out.Image,
		Format:         out.Format,
		Name:           name,
		ProcessingTime: total,
		StepTimings:    timings,
	}, nil
}

// Submit enqueues an async job. Returns ErrWorkerPoolFull if the queue is full.
func (p *Processor) Submit(job Job) error {
	select {
	case <-p.shutdown:
		return apperrors.New(apperrors.CategoryPipeline, "submit", apperrors.ErrWorkerPoolFull)
	default:
	}
	select {
	case p.jobQueue <- job:
		return nil
	default:
		return apperrors.New(apperrors.CategoryPipeline, "submit", apperrors.ErrWorkerPoolFull)
	}
}

// Batch imports multiple sources concurrently (fan-out / fan-in). Results and
// errors are index-aligned with sources.
func (p *Processor) Batch(ctx context.Context, sources []Source) ([]*ImportResult, []error) {
	results := make([]*ImportResult, len(sources))
	errs := make([]error, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			r, e := p.Import(ctx, s)
			results[idx] = r
			errs[idx] = e
		}(i, src)
	}
	wg.Wait()
	return results, errs
}

// ── worker pool internals ──────────────────────────────────────────────────────

func (p *Processor) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.shutdown:
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.processJob(job)
		}
	}
}

func (p *Processor) processJob(job Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := p.cfg.JobTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := p.opts
	if job.Options != nil {
		opts = *job.Options
	}
	result, err := p.ImportWith(ctx, job.Source, opts)
	if job.ResultCh != nil {
		job.ResultCh <- JobResult{JobID: job.ID, Result: result, Err: err}
	}
}

// ProcessedCount returns the total number of successfully imported images.
func (p *Processor) ProcessedCount() int64 { return atomic.LoadInt64(&p.processedCount) }

// ErrorCount returns the total number of failed imports.
func (p *Processor) ErrorCount() int64 { return atomic.LoadInt64(&p.errorCount) }
