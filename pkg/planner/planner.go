// Package planner grows a Rapidly-exploring Random Tree over a continuous
// configuration space.
//
// Each iteration samples a target, finds the nearest tree node, steers from
// that node toward the target as far as the obstacles allow (see Drive), and
// appends the steered configuration as a child of the nearest node. The loop
// runs for a fixed number of iterations; it never stops early on reaching
// the goal, and it accepts zero-progress steps as regular children.
package planner

import (
	"log"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/sampler"
	"github.com/chazu/bramble/pkg/space"
	"github.com/chazu/bramble/pkg/tree"
	"github.com/cockroachdb/errors"
)

// ErrInvalidLimit is returned for a non-positive iteration limit or step count.
var ErrInvalidLimit = errors.New("invalid limit")

// Options defines parameters for a planning run.
type Options struct {
	// Logger receives a summary line per run. Nil disables logging.
	Logger *log.Logger
	// Broadphase enables the R-tree filter over obstacle bounds.
	Broadphase bool
	// Observer is called after every iteration.
	Observer func(Step)
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithLogger routes run summaries to l.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithBroadphase toggles the obstacle R-tree. It is on by default.
func WithBroadphase(on bool) Option {
	return func(o *Options) { o.Broadphase = on }
}

// WithObserver registers fn to be called with every completed Step.
func WithObserver(fn func(Step)) Option {
	return func(o *Options) { o.Observer = fn }
}

// Planner runs RRT growth. A Planner holds only configuration and may be
// reused; each run owns its own tree.
type Planner struct {
	opts Options
}

// New returns a Planner with the given options applied.
func New(options ...Option) *Planner {
	opts := Options{Broadphase: true}
	for _, o := range options {
		o(&opts)
	}
	return &Planner{opts: opts}
}

// Run grows a tree rooted at start for iterationLimit iterations, steering
// each step through stepCount discretization points per obstacle.
//
// Invalid arguments are reported before any growth and yield a nil tree. If
// an iteration fails, the tree grown so far is returned together with the
// error; the failing iteration adds no node.
func (p *Planner) Run(
	start, goal space.Point,
	obstacles []obstacle.Obstacle,
	s sampler.Sampler,
	iterationLimit, stepCount int,
) (*tree.Tree, error) {
	g, err := p.NewGrower(start, goal, obstacles, s, iterationLimit, stepCount)
	if err != nil {
		return nil, err
	}
	for !g.Done() {
		if _, err := g.Step(); err != nil {
			p.logf("rrt: stopped after %d of %d iterations: %v", g.iteration, iterationLimit, err)
			return g.Tree(), err
		}
	}
	p.summarize(g)
	return g.Tree(), nil
}

func (p *Planner) logf(format string, args ...interface{}) {
	if p.opts.Logger != nil {
		p.opts.Logger.Printf(format, args...)
	}
}

func (p *Planner) summarize(g *Grower) {
	if p.opts.Logger == nil {
		return
	}
	id, err := g.tree.Nearest(g.goal)
	if err != nil {
		return
	}
	v, _ := g.tree.Value(id)
	d, _ := g.goal.Distance(v)
	p.logf("rrt: grew %d nodes over %d obstacles; closest to goal %s is %s (%.4g away)",
		g.tree.Len(), len(g.obstacles), g.goal, v, d)
}
