// Command teximport converts image files into raw texture dumps.
//
//	teximport import --out textures --preview *.png
//	teximport probe photo.jpg
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	textureimport "github.com/Skryldev/texture-import"
	"github.com/Skryldev/texture-import/adapters/vips"
	"github.com/Skryldev/texture-import/config"
	apperrors "github.com/Skryldev/texture-import/errors"
	"github.com/Skryldev/texture-import/hooks"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `help:"YAML configuration file" type:"existingfile"`
	LogLevel string `help:"Log level (debug, info, warn, error); overrides the configuration file"`
	Vips     bool   `help:"Fall back to libvips for formats without a native decoder" default:"false"`
}

type CLI struct {
	Globals

	Import ImportCmd `cmd:"" help:"Import images and write raw pixel dumps"`
	Probe  ProbeCmd  `cmd:"" help:"Print what the header of each image says"`
}

// session is the processor and logger a command runs with.
type session struct {
	cfg  config.Config
	log  *slog.Logger
	proc *textureimport.Processor
	vips *vips.Backend
}

func (s *session) Close() {
	if s.vips != nil {
		s.vips.Shutdown()
	}
}

// open loads the configuration and wires a processor with logging.
func (g *Globals) open() (*session, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryConfig, "config.load", err)
		}
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
		if err := config.Validate(cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryConfig, "config.validate", err)
		}
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: hooks.ParseLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	proc := textureimport.New(cfg)
	logger := hooks.NewSlogLogger(log)
	proc.SetLogger(logger)
	proc.AddHook(hooks.NewLoggingHook(logger))

	s := &session{cfg: cfg, log: log, proc: proc}
	if g.Vips {
		s.vips = vips.NewBackend(vips.BackendConfig{MaxWorkers: cfg.WorkerCount})
		s.vips.Register(proc.Registry())
	}
	return s, nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("teximport"),
		kong.Description("Turn PNG, JPEG and other images into GPU-ready raw pixel buffers."),
		kong.UsageOnError(),
	)
	if err := kctx.Run(&cli.Globals); err != nil {
		fmt.Fprintln(os.Stderr, "teximport:", err)
		os.Exit(1)
	}
}
