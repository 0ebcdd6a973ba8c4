// Package app wires the bake pipeline together: recipe source is evaluated
// into a scene, the scene is tessellated into one mesh with a region per
// part, and every bake job runs over its regions of that mesh.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chazu/colliderbake/pkg/bake"
	"github.com/chazu/colliderbake/pkg/config"
	"github.com/chazu/colliderbake/pkg/kernel"
	"github.com/chazu/colliderbake/pkg/kernel/sdfx"
	"github.com/chazu/colliderbake/pkg/mesh"
	"github.com/chazu/colliderbake/pkg/primitive"
	"github.com/chazu/colliderbake/pkg/recipe"
	"github.com/chazu/colliderbake/pkg/tessellate"
)

// DefaultJob names the job run when a recipe declares no bake forms.
const DefaultJob = "default"

// App runs recipes with one configuration.
type App struct {
	cfg    config.Config
	engine *recipe.Engine
	kernel kernel.Kernel
	log    *slog.Logger
}

// New creates an App with the sdfx kernel at cfg.Resolution. A nil
// logger uses slog.Default.
func New(cfg config.Config, log *slog.Logger) *App {
	return NewWithKernel(cfg, sdfx.NewWithResolution(cfg.Resolution), log)
}

// NewWithKernel creates an App that tessellates with k.
func NewWithKernel(cfg config.Config, k kernel.Kernel, log *slog.Logger) *App {
	if log == nil {
		log = slog.Default()
	}
	return &App{
		cfg:    cfg,
		engine: recipe.WithTimeout(cfg.EvalTimeout()),
		kernel: k,
		log:    log,
	}
}

// ErrorData is a JSON-serializable pipeline error.
type ErrorData struct {
	Job     string `json:"job,omitempty"`
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

// WarningData is a JSON-serializable bake or scene warning.
type WarningData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// JobResult is the output of one bake job.
type JobResult struct {
	Name       string          `json:"name"`
	Strategy   bake.Strategy   `json:"strategy"`
	Parts      []string        `json:"parts,omitempty"`
	Primitives json.RawMessage `json:"primitives"`
	Warnings   []WarningData   `json:"warnings,omitempty"`
	Truncated  bool            `json:"truncated,omitempty"`
	Requested  int             `json:"requested,omitempty"`
	Produced   int             `json:"produced"`
	Trigger    bool            `json:"trigger,omitempty"`
	Convex     bool            `json:"convex,omitempty"`
}

// Output is the full result of a run. Jobs that failed appear in Errors
// only; the other jobs still report.
type Output struct {
	Jobs     []JobResult   `json:"jobs"`
	Errors   []ErrorData   `json:"errors,omitempty"`
	Warnings []WarningData `json:"warnings,omitempty"`
	// Mesh is the tessellated scene, nil when evaluation failed.
	Mesh *mesh.Mesh `json:"-"`
}

// OK reports whether the run produced no errors.
func (o *Output) OK() bool {
	return len(o.Errors) == 0
}

// Run evaluates source and bakes every job.
func (a *App) Run(ctx context.Context, source string) *Output {
	out := &Output{Jobs: []JobResult{}}

	// Step 1: Evaluate the recipe into a scene and jobs.
	r, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		a.log.Error("evaluate failed", "err", err)
		out.Errors = append(out.Errors, ErrorData{Message: err.Error()})
		return out
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			out.Errors = append(out.Errors, ErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return out
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, WarningData{Kind: "scene", Message: w.String()})
	}
	if len(r.Scene.Parts) == 0 {
		a.log.Info("recipe has no parts")
		return out
	}

	// Step 2: Tessellate the scene into one mesh, one region per part.
	m, err := tessellate.Tessellate(ctx, r.Scene, a.kernel, tessellate.Options{Workers: a.cfg.Workers})
	if err != nil {
		a.log.Error("tessellate failed", "err", err)
		out.Errors = append(out.Errors, ErrorData{Message: "tessellation failed: " + err.Error()})
		return out
	}
	out.Mesh = m
	a.log.Debug("tessellated", "parts", len(m.Regions), "vertices", m.VertexCount(), "triangles", m.TriangleCount())

	// Step 3: Bake every job over its regions.
	for _, job := range a.jobs(r) {
		jr, err := a.bake(ctx, m, job)
		if err != nil {
			out.Errors = append(out.Errors, ErrorData{Job: job.Name, Message: err.Error()})
			if ctx.Err() != nil {
				break
			}
			continue
		}
		out.Jobs = append(out.Jobs, jr)
	}
	return out
}

// jobs returns the recipe's jobs with the config overrides applied, or the
// configured default job when the recipe declares none.
func (a *App) jobs(r *recipe.Recipe) []recipe.Job {
	if len(r.Jobs) == 0 {
		return []recipe.Job{{Name: DefaultJob, Settings: a.cfg.Settings(), Parts: a.cfg.Regions}}
	}
	jobs := make([]recipe.Job, len(r.Jobs))
	for i, j := range r.Jobs {
		j.Settings = a.cfg.Apply(j.Settings)
		jobs[i] = j
	}
	return jobs
}

func (a *App) bake(ctx context.Context, m *mesh.Mesh, job recipe.Job) (JobResult, error) {
	regions, err := m.RegionIndices(job.Parts...)
	if err != nil {
		return JobResult{}, fmt.Errorf("job %q: %w", job.Name, err)
	}
	in := bake.Input{
		Mesh:    m,
		Regions: regions,
		Scale:   a.cfg.ScaleVec(),
		Logger:  a.log.With("job", job.Name),
	}
	res, err := bake.Bake(ctx, job.Strategy(), in, job.Settings)
	if err != nil {
		return JobResult{}, fmt.Errorf("job %q: %w", job.Name, err)
	}

	prims, err := primitive.Marshal(res.Primitives)
	if err != nil {
		return JobResult{}, fmt.Errorf("job %q: %w", job.Name, err)
	}
	jr := JobResult{
		Name:       job.Name,
		Strategy:   res.Strategy,
		Parts:      job.Parts,
		Primitives: prims,
		Truncated:  res.Truncated,
		Requested:  res.Requested,
		Produced:   res.Produced,
		Trigger:    res.Trigger,
		Convex:     res.Convex,
	}
	for _, w := range res.Warnings {
		jr.Warnings = append(jr.Warnings, WarningData{Kind: w.Kind.String(), Message: w.Message, Count: w.Count})
	}
	return jr, nil
}
