package planner

import (
	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/sampler"
	"github.com/chazu/bramble/pkg/space"
	"github.com/chazu/bramble/pkg/tree"
	"github.com/cockroachdb/errors"
)

// Step describes one growth iteration.
type Step struct {
	Iteration int         // 1-based
	Sample    space.Point // target drawn from the sampler
	Nearest   tree.NodeID // node steered from
	Node      tree.NodeID // node appended
	Value     space.Point // configuration of the appended node
	Advance   float64     // distance between Nearest and Node
	Done      bool        // set once the iteration budget is spent
}

// Grower runs the growth loop one iteration at a time. It is the single
// writer of its tree: nearest lookup and append happen within one Step, and
// a Grower must not be stepped from more than one goroutine.
type Grower struct {
	planner   *Planner
	tree      *tree.Tree
	goal      space.Point
	obstacles []obstacle.Obstacle
	index     *obstacleIndex
	sampler   sampler.Sampler
	dim       int
	steps     int
	limit     int
	iteration int
}

// NewGrower validates the run parameters and creates the root node.
func (p *Planner) NewGrower(
	start, goal space.Point,
	obstacles []obstacle.Obstacle,
	s sampler.Sampler,
	iterationLimit, stepCount int,
) (*Grower, error) {
	if iterationLimit <= 0 {
		return nil, errors.Wrapf(ErrInvalidLimit, "iteration limit %d", iterationLimit)
	}
	if stepCount <= 0 {
		return nil, errors.Wrapf(ErrInvalidLimit, "step count %d", stepCount)
	}
	if s == nil {
		return nil, errors.New("planner: nil sampler")
	}
	dim, err := space.Check(start, goal)
	if err != nil {
		return nil, errors.Wrap(err, "start and goal")
	}
	for i, o := range obstacles {
		if o == nil {
			return nil, errors.Newf("planner: obstacle %d is nil", i)
		}
		if d := o.Bounds().Dim(); d != dim {
			return nil, errors.Wrapf(space.ErrInvalidDimension, "obstacle %d is %d-d, start is %d-d", i, d, dim)
		}
	}

	g := &Grower{
		planner:   p,
		tree:      tree.New(start),
		goal:      goal.Clone(),
		obstacles: obstacles,
		sampler:   s,
		dim:       dim,
		steps:     stepCount,
		limit:     iterationLimit,
	}
	if p.opts.Broadphase && len(obstacles) > 0 {
		g.index, err = newObstacleIndex(dim, obstacles)
		if err != nil {
			return nil, errors.Wrap(err, "planner")
		}
	}
	return g, nil
}

// Tree returns the tree grown so far.
func (g *Grower) Tree() *tree.Tree {
	return g.tree
}

// Done reports whether the iteration budget is spent.
func (g *Grower) Done() bool {
	return g.iteration >= g.limit
}

// Remaining returns the number of iterations left.
func (g *Grower) Remaining() int {
	return g.limit - g.iteration
}

// Step runs one iteration: sample, nearest, steer, append. Once the budget
// is spent it returns a Step with Done set and does nothing else.
func (g *Grower) Step() (Step, error) {
	if g.Done() {
		return Step{Iteration: g.iteration, Done: true}, nil
	}

	target := g.sampler.Sample()
	if target.Dim() != g.dim {
		return Step{}, errors.Wrapf(space.ErrInvalidDimension,
			"iteration %d: sampler returned a %d-d point, want %d-d", g.iteration+1, target.Dim(), g.dim)
	}

	nearest, err := g.tree.Nearest(target)
	if err != nil {
		return Step{}, errors.Wrapf(err, "iteration %d", g.iteration+1)
	}
	from, err := g.tree.Value(nearest)
	if err != nil {
		return Step{}, errors.Wrapf(err, "iteration %d", g.iteration+1)
	}

	var reached space.Point
	if g.index != nil {
		reached, err = g.index.drive(from, target, g.steps)
	} else {
		reached, err = Drive(from, target, g.obstacles, g.steps)
	}
	if err != nil {
		return Step{}, errors.Wrapf(err, "iteration %d", g.iteration+1)
	}

	id, err := g.tree.Append(nearest, reached)
	if err != nil {
		return Step{}, errors.Wrapf(err, "iteration %d", g.iteration+1)
	}
	g.iteration++

	advance, _ := from.Distance(reached)
	st := Step{
		Iteration: g.iteration,
		Sample:    target,
		Nearest:   nearest,
		Node:      id,
		Value:     reached,
		Advance:   advance,
		Done:      g.Done(),
	}
	if g.planner.opts.Observer != nil {
		g.planner.opts.Observer(st)
	}
	return st, nil
}
