// Package pipeline wires import steps together and runs hooks around them.
package pipeline

import (
	"context"
	"time"

	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
)

// Pipeline executes a sequence of Steps with hook support. A failing step
// ends the run; nothing is retried.
type Pipeline struct {
	steps []core.Step
	hooks []core.Hook
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Use appends a step to the pipeline.  Returns the same Pipeline for chaining.
func (p *Pipeline) Use(s ...core.Step) *Pipeline {
	p.steps = append(p.steps, s...)
	return p
}

// AddHook registers an observer.
func (p *Pipeline) AddHook(h core.Hook) {
	p.hooks = append(p.hooks, h)
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes the pipeline on st. It returns the final state and a map of
// per-step timing observations. On error the state is nil.
func (p *Pipeline) Run(ctx context.Context, st *core.ImportState) (*core.ImportState, map[string]time.Duration, error) {
	timings := make(map[string]time.Duration, len(p.steps))
	current := st

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, timings, apperrors.Wrap(apperrors.CategoryPipeline, step.Name(), err)
		}

		result, elapsed, err := p.runStep(ctx, step, current)
		timings[step.Name()] = elapsed
		if err != nil {
			return nil, timings, err
		}
		current = result
	}
	return current, timings, nil
}

// runStep executes a single step and calls hooks around it.
func (p *Pipeline) runStep(ctx context.Context, step core.Step, st *core.ImportState) (*core.ImportState, time.Duration, error) {
	p.callHooksBefore(ctx, step.Name(), st)

	start := time.Now()
	result, err := step.Execute(ctx, st)
	elapsed := time.Since(start)

	p.callHooksAfter(ctx, step.Name(), result, elapsed, err)
	return result, elapsed, err
}

func (p *Pipeline) callHooksBefore(ctx context.Context, name string, st *core.ImportState) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, st)
	}
}

func (p *Pipeline) callHooksAfter(ctx context.Context, name string, st *core.ImportState, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, st, d, err)
	}
}

// Clone returns a shallow copy of the pipeline so templates can be reused
// safely across goroutines.
func (p *Pipeline) Clone() *Pipeline {
	cp := &Pipeline{
		steps: make([]core.Step, len(p.steps)),
		hooks: make([]core.Hook, len(p.hooks)),
	}
	copy(cp.steps, p.steps)
	copy(cp.hooks, p.hooks)
	return cp
}

// Import builds the standard import pipeline over reg:
// sniff, header, validate, resolve, fill_raw, zero_alpha.
func Import(reg core.Registry) *Pipeline {
	return New().Use(
		&SniffStep{Registry: reg},
		&HeaderStep{},
		&ValidateStep{},
		&ResolveStep{},
		&FillRawStep{},
		&ZeroAlphaStep{},
	)
}

var _ core.PipelineRunner = (*Pipeline)(nil)
