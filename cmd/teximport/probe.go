package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	textureimport "github.com/Skryldev/texture-import"
)

type ProbeCmd struct {
	Files []string `arg:"" help:"Images to inspect" type:"existingfile"`
	JSON  bool     `name:"json" help:"Print one JSON object per file" default:"false"`

	stdout io.Writer `kong:"-"`
}

type probeLine struct {
	File            string `json:"file"`
	Format          string `json:"format"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	BitDepth        int    `json:"bit_depth"`
	Layout          string `json:"layout"`
	PixelFormat     string `json:"pixel_format"`
	SRGB            bool   `json:"srgb"`
	ValidResolution bool   `json:"valid_resolution"`
	Oversized       bool   `json:"oversized"`
	Error           string `json:"error,omitempty"`
}

func (c *ProbeCmd) Run(g *Globals) error {
	s, err := g.open()
	if err != nil {
		return err
	}
	defer s.Close()

	w := c.stdout
	if w == nil {
		w = os.Stdout
	}
	lines := make([]probeLine, 0, len(c.Files))
	var failed int
	for _, name := range c.Files {
		line := probeFile(s.proc, name)
		if line.Error != "" {
			failed++
		}
		lines = append(lines, line)
	}

	if c.JSON {
		enc := json.NewEncoder(w)
		for _, l := range lines {
			if err := enc.Encode(l); err != nil {
				return err
			}
		}
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tFORMAT\tSIZE\tDEPTH\tLAYOUT\tPIXEL FORMAT\tVALID")
		for _, l := range lines {
			if l.Error != "" {
				fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%s\n", l.File, l.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%d\t%s\t%s\t%t\n",
				l.File, l.Format, l.Width, l.Height, l.BitDepth, l.Layout, l.PixelFormat, l.ValidResolution)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be probed", failed, len(c.Files))
	}
	return nil
}

func probeFile(proc *textureimport.Processor, name string) probeLine {
	line := probeLine{File: name}
	f, err := os.Open(name)
	if err != nil {
		line.Error = err.Error()
		return line
	}
	defer f.Close()

	info, err := proc.Probe(context.Background(), textureimport.FromReader(f))
	if err != nil {
		line.Error = err.Error()
		return line
	}
	line.Format = string(info.Format)
	line.Width, line.Height = info.Width, info.Height
	line.BitDepth = info.BitDepth
	line.Layout = info.Layout.String()
	line.PixelFormat = info.PixelFormat.String()
	line.SRGB = info.SRGB
	line.ValidResolution = info.ValidResolution
	line.Oversized = info.Oversized
	return line
}
