// Package sampler provides the target-drawing strategies fed to the planner.
// Every random sampler owns its generator and takes the seed explicitly, so a
// run is reproducible from its inputs alone.
package sampler

import (
	"math"
	"math/rand/v2"

	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// Sampler draws configurations from the planning space.
type Sampler interface {
	Sample() space.Point
}

// Func adapts a plain function to the Sampler interface.
type Func func() space.Point

// Sample calls f.
func (f Func) Sample() space.Point { return f() }

// seedStream is mixed into the second PCG word so that seed 0 still yields a
// well-distributed stream.
const seedStream = 0x9e3779b97f4a7c15

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedStream))
}

// Uniform draws configurations uniformly from bounds.
type Uniform struct {
	bounds space.Bounds
	rng    *rand.Rand
}

// NewUniform returns a uniform sampler over bounds seeded with seed.
func NewUniform(bounds space.Bounds, seed uint64) (*Uniform, error) {
	if bounds.Dim() == 0 {
		return nil, errors.Wrap(space.ErrInvalidDimension, "uniform sampler: empty bounds")
	}
	return &Uniform{bounds: bounds, rng: newRand(seed)}, nil
}

// Sample returns the next configuration.
func (u *Uniform) Sample() space.Point {
	p := make(space.Point, u.bounds.Dim())
	for i := range p {
		lo, hi := u.bounds.Min[i], u.bounds.Max[i]
		p[i] = lo + u.rng.Float64()*(hi-lo)
	}
	return p
}

// Gaussian draws configurations from an axis-aligned normal distribution
// around a mean, clamped to bounds.
type Gaussian struct {
	mean   space.Point
	sigma  float64
	bounds space.Bounds
	rng    *rand.Rand
}

// NewGaussian returns a Gaussian sampler with the given mean and standard
// deviation on every axis.
func NewGaussian(mean space.Point, sigma float64, bounds space.Bounds, seed uint64) (*Gaussian, error) {
	if _, err := space.Check(mean, bounds.Min); err != nil {
		return nil, errors.Wrap(err, "gaussian sampler")
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return nil, errors.Newf("gaussian sampler: sigma must be positive, got %g", sigma)
	}
	return &Gaussian{mean: mean.Clone(), sigma: sigma, bounds: bounds, rng: newRand(seed)}, nil
}

// Sample returns the next configuration.
func (g *Gaussian) Sample() space.Point {
	p := make(space.Point, len(g.mean))
	for i := range p {
		v := g.mean[i] + g.rng.NormFloat64()*g.sigma
		p[i] = math.Min(math.Max(v, g.bounds.Min[i]), g.bounds.Max[i])
	}
	return p
}

// GoalBiased returns the goal on every Nth call and defers to an inner
// sampler otherwise.
type GoalBiased struct {
	inner Sampler
	goal  space.Point
	every int
	calls int
}

// NewGoalBiased wraps inner so that calls every, 2·every, ... return goal.
func NewGoalBiased(inner Sampler, goal space.Point, every int) (*GoalBiased, error) {
	if inner == nil {
		return nil, errors.New("goal-biased sampler: nil inner sampler")
	}
	if every < 1 {
		return nil, errors.Newf("goal-biased sampler: period must be at least 1, got %d", every)
	}
	return &GoalBiased{inner: inner, goal: goal.Clone(), every: every}, nil
}

// Sample returns the next configuration.
func (g *GoalBiased) Sample() space.Point {
	g.calls++
	if g.calls%g.every == 0 {
		return g.goal.Clone()
	}
	return g.inner.Sample()
}

// Sequence replays a fixed list of configurations, wrapping around.
type Sequence struct {
	points []space.Point
	next   int
}

// NewSequence returns a sampler cycling through points.
func NewSequence(points ...space.Point) *Sequence {
	cp := make([]space.Point, len(points))
	for i, p := range points {
		cp[i] = p.Clone()
	}
	return &Sequence{points: cp}
}

// Sample returns the next configuration, or nil if the sequence is empty.
func (s *Sequence) Sample() space.Point {
	if len(s.points) == 0 {
		return nil
	}
	p := s.points[s.next%len(s.points)]
	s.next++
	return p.Clone()
}
