package main

import (
	"io"
	"log"
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/chazu/bramble/pkg/planner"
	"github.com/chazu/bramble/pkg/render"
	"github.com/chazu/bramble/pkg/scenario"
	"github.com/chazu/bramble/pkg/space"
)

// advanceScale converts steering distances to histogram units (micro-units
// of configuration space).
const advanceScale = 1e6

// App runs scene scripts end to end: evaluate, grow, extract a path and
// optionally render.
type App struct {
	engine *scenario.Engine
	// Logger receives per-run planner summaries. Nil keeps the planner quiet.
	Logger *log.Logger
}

// PlanOptions overrides scene settings for a single run.
type PlanOptions struct {
	// Seed replaces the scene seed when non-nil.
	Seed *uint64
	// Iterations replaces the scene iteration count when positive.
	Iterations int
	// LinearScan disables the obstacle index.
	LinearScan bool
	// SVG receives a drawing of the run when non-nil.
	SVG io.Writer
}

// EvalErrorData is a JSON-serializable script or run error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// AdvanceStats summarizes how far each iteration moved the tree.
type AdvanceStats struct {
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	Max  float64 `json:"max"`
	// Stalled counts iterations that added a node on top of its parent.
	Stalled int `json:"stalled"`
}

// PlanResult is the outcome of a run.
type PlanResult struct {
	Dim          int             `json:"dim"`
	Nodes        int             `json:"nodes"`
	Obstacles    int             `json:"obstacles"`
	Iterations   int             `json:"iterations"`
	Seed         uint64          `json:"seed"`
	Reached      bool            `json:"reached"`
	GoalDistance float64         `json:"goalDistance"`
	Path         [][]float64     `json:"path"`
	PathLength   float64         `json:"pathLength"`
	Advance      AdvanceStats    `json:"advance"`
	Elapsed      time.Duration   `json:"elapsed"`
	Errors       []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with a scene engine.
func NewApp() *App {
	return &App{engine: scenario.NewEngine()}
}

// Plan evaluates source and runs the planner with the scene's own settings.
func (a *App) Plan(source string) PlanResult {
	return a.PlanWith(source, PlanOptions{})
}

// PlanWith evaluates source, applies opts and runs the planner.
func (a *App) PlanWith(source string, opts PlanOptions) PlanResult {
	result := PlanResult{Errors: []EvalErrorData{}}

	// Step 1: Evaluate the scene script.
	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: Apply overrides and build the sampler.
	if opts.Seed != nil {
		sc.Seed = *opts.Seed
	}
	if opts.Iterations > 0 {
		sc.Iterations = opts.Iterations
	}
	s, err := sc.NewSampler()
	if err != nil {
		return fail(result, "sampler", err)
	}
	result.Dim = sc.Dim()
	result.Obstacles = len(sc.Obstacles)
	result.Iterations = sc.Iterations
	result.Seed = sc.Seed

	// Step 3: Grow the tree, recording how far every step advanced.
	// Every node lies on a segment between existing nodes and samples, so
	// no step is longer than the diagonal of the box around start, goal and
	// the sampling bounds.
	ext := extent(sc.Bounds, sc.Start, sc.Goal)
	diag, _ := ext.Min.Distance(ext.Max)
	hist := hdrhistogram.New(1, int64(math.Ceil(diag*advanceScale))+1, 3)
	stalled := 0
	p := planner.New(
		planner.WithLogger(a.Logger),
		planner.WithBroadphase(!opts.LinearScan),
		planner.WithObserver(func(st planner.Step) {
			if st.Advance == 0 {
				stalled++
			}
			if err := hist.RecordValue(int64(math.Round(st.Advance * advanceScale))); err != nil {
				log.Printf("advance %g not recorded: %v", st.Advance, err)
			}
		}),
	)
	began := time.Now()
	tr, err := p.Run(sc.Start, sc.Goal, sc.Obstacles, s, sc.Iterations, sc.Steps)
	result.Elapsed = time.Since(began)
	result.Nodes = tr.Len()
	if err != nil {
		return fail(result, "plan", err)
	}
	result.Advance = AdvanceStats{
		Mean:    hist.Mean() / advanceScale,
		P50:     float64(hist.ValueAtQuantile(50)) / advanceScale,
		P90:     float64(hist.ValueAtQuantile(90)) / advanceScale,
		Max:     float64(hist.Max()) / advanceScale,
		Stalled: stalled,
	}

	// Step 4: Extract the path to the goal, if the tree got close enough.
	var path []space.Point
	nearest, err := tr.Nearest(sc.Goal)
	if err != nil {
		return fail(result, "reach", err)
	}
	closest, _ := tr.Value(nearest)
	result.GoalDistance, _ = closest.Distance(sc.Goal)
	id, reached, err := tr.Reach(sc.Goal, sc.Tolerance)
	if err != nil {
		return fail(result, "reach", err)
	}
	if reached {
		if path, err = tr.Path(id); err != nil {
			return fail(result, "path", err)
		}
		result.Reached = true
		result.PathLength = pathLength(path)
		for _, q := range path {
			result.Path = append(result.Path, []float64(q.Clone()))
		}
	}

	// Step 5: Render.
	if opts.SVG != nil {
		err := render.SVG(opts.SVG, render.Scene{
			Bounds:    sc.Bounds,
			Obstacles: sc.Obstacles,
			Tree:      tr,
			Path:      path,
			Start:     sc.Start,
			Goal:      sc.Goal,
			Tolerance: sc.Tolerance,
		}, render.Options{})
		if err != nil {
			return fail(result, "render", err)
		}
	}

	return result
}

func fail(result PlanResult, stage string, err error) PlanResult {
	log.Printf("%s error: %v", stage, err)
	result.Errors = append(result.Errors, EvalErrorData{Message: stage + ": " + err.Error()})
	return result
}

// extent returns the smallest bounds containing b and every point in pts.
func extent(b space.Bounds, pts ...space.Point) space.Bounds {
	out := space.Bounds{Min: b.Min.Clone(), Max: b.Max.Clone()}
	for _, p := range pts {
		for i := range out.Min {
			out.Min[i] = math.Min(out.Min[i], p[i])
			out.Max[i] = math.Max(out.Max[i], p[i])
		}
	}
	return out
}

func pathLength(path []space.Point) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		d, _ := path[i-1].Distance(path[i])
		total += d
	}
	return total
}
