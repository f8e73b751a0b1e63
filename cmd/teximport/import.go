package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/Skryldev/texture-import/adapters/encoder"
	"github.com/Skryldev/texture-import/adapters/storage"
	"github.com/Skryldev/texture-import/core"
)

type ImportCmd struct {
	Files          []string `arg:"" help:"Images to import" type:"existingfile"`
	Out            string   `help:"Output directory; defaults to output.dir from the configuration"`
	Bucket         string   `help:"Subdirectory under the output directory"`
	Compress       bool     `help:"zstd-compress the raw dumps" default:"false"`
	Preview        bool     `help:"Also write a PNG preview of each imported image" default:"false"`
	NoFill         bool     `help:"Keep the color under fully transparent PNG pixels" default:"false"`
	Strict         bool     `help:"Reject textures whose sides are not powers of two" default:"false"`
	MaxResolution  int      `help:"Largest accepted edge in pixels; 0 keeps the configured value"`
	AllowOversized bool     `help:"Import textures beyond max-resolution when their area still fits" default:"false"`
	RetainJPEG     bool     `name:"retain-jpeg" help:"Store JPEG input still compressed" default:"false"`
}

func (c *ImportCmd) Validate(kctx *kong.Context) error {
	if c.MaxResolution < 0 {
		return fmt.Errorf("invalid max resolution: %d", c.MaxResolution)
	}
	return nil
}

// options layers the command flags over the configured import policy.
func (c *ImportCmd) options(s *session) core.ImportOptions {
	opts := s.proc.Options()
	if c.NoFill {
		opts.FillPNGZeroAlpha = false
	}
	if c.Strict {
		opts.AllowNonPowerOfTwo = false
	}
	if c.MaxResolution > 0 {
		opts.MaxResolution = c.MaxResolution
	}
	if c.RetainJPEG {
		opts.RetainJPEG = true
	}
	allow := c.AllowOversized
	opts.ConfirmOversized = func(w, h int) bool {
		if !allow {
			s.log.Warn("oversized texture rejected; pass --allow-oversized to import it", "width", w, "height", h)
		}
		return allow
	}
	return opts
}

func (c *ImportCmd) Run(g *Globals) error {
	s, err := g.open()
	if err != nil {
		return err
	}
	defer s.Close()

	out := c.Out
	if out == "" {
		out = s.cfg.Output.Dir
	}
	store, err := storage.NewLocal(out, os.FileMode(s.cfg.Output.Permissions), c.Compress || s.cfg.Output.Compress)
	if err != nil {
		return err
	}
	preview := encoder.NewPNG()

	s.proc.Start()
	defer s.proc.Stop()

	ctx := context.Background()
	opts := c.options(s)
	results := make(chan core.JobResult, len(c.Files))
	for _, name := range c.Files {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("could not open %q: %w", name, err)
		}
		defer f.Close()

		job := core.Job{
			ID:       name,
			Ctx:      ctx,
			Source:   core.Source{Reader: f, Name: name, Size: -1},
			Options:  &opts,
			ResultCh: results,
		}
		// a full queue means the workers are behind; import inline instead
		if err := s.proc.Submit(job); err != nil {
			r, err := s.proc.ImportWith(ctx, job.Source, opts)
			results <- core.JobResult{JobID: name, Result: r, Err: err}
		}
	}

	var failed int
	for range c.Files {
		res := <-results
		logger := s.log.With("file", res.JobID)
		if res.Err != nil {
			failed++
			logger.Error("could not import image", "error", res.Err)
			continue
		}
		if err := c.write(ctx, out, store, preview, res); err != nil {
			failed++
			logger.Error("could not write texture", "error", err)
			continue
		}
		img := res.Result.Image
		logger.Info("imported",
			"format", res.Result.Format,
			"width", img.Width,
			"height", img.Height,
			"pixel_format", img.Format.String(),
			"compression", img.CompressionSettings.String(),
		)
	}

	processed, errs := s.proc.Stats()
	s.log.Info("stats", "imported", processed, "errors", errs, "total", len(c.Files))
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(c.Files))
	}
	return nil
}

func (c *ImportCmd) write(ctx context.Context, out string, store *storage.Local, preview *encoder.PNG, res core.JobResult) error {
	key := core.StorageKey{Bucket: c.Bucket, Path: stem(res.JobID)}
	if err := store.Put(ctx, key, res.Result.Image); err != nil {
		return err
	}
	if !c.Preview {
		return nil
	}
	data, err := preview.Encode(ctx, res.Result.Image)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(out, filepath.Clean("/"+c.Bucket), key.Path+".preview.png"), data, 0o644)
}

// stem is the file name without directory and extension.
func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
