package scenario

import (
	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/sampler"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// ErrIncomplete is returned by Validate when a scene omits its start or goal.
var ErrIncomplete = errors.New("incomplete scenario")

// Defaults applied to anything a scene does not set.
const (
	DefaultIterations = 100
	DefaultSteps      = 100
	DefaultSeed       = 1
	DefaultTolerance  = 0.5
	DefaultLow        = 0.0
	DefaultHigh       = 10.0
)

// SamplerKind selects the distribution targets are drawn from.
type SamplerKind string

const (
	SamplerUniform  SamplerKind = "uniform"
	SamplerGaussian SamplerKind = "gaussian"
)

// Scenario is everything a planning run needs: where it may go, where it
// starts and ends, what is in the way, and how long to search.
type Scenario struct {
	Bounds    space.Bounds
	Start     space.Point
	Goal      space.Point
	Obstacles []obstacle.Obstacle

	Iterations int
	Steps      int
	Seed       uint64
	// GoalBias is the period at which the goal itself is sampled; 0 disables.
	GoalBias  int
	Tolerance float64

	Sampler SamplerKind
	// Sigma is the standard deviation of the Gaussian sampler, centered on Goal.
	Sigma float64
}

// New returns a Scenario with default run parameters and no geometry.
func New() *Scenario {
	return &Scenario{
		Iterations: DefaultIterations,
		Steps:      DefaultSteps,
		Seed:       DefaultSeed,
		Tolerance:  DefaultTolerance,
		Sampler:    SamplerUniform,
	}
}

// Dim returns the dimension of the start configuration, or 0 if unset.
func (s *Scenario) Dim() int {
	return s.Start.Dim()
}

// Validate checks that start and goal are present and that bounds, start,
// goal and every obstacle agree on dimension. Unset bounds default to the
// cube [DefaultLow, DefaultHigh] in the start's dimension.
func (s *Scenario) Validate() error {
	if s.Start == nil {
		return errors.Wrap(ErrIncomplete, "no start configuration")
	}
	if s.Goal == nil {
		return errors.Wrap(ErrIncomplete, "no goal configuration")
	}
	dim, err := space.Check(s.Start, s.Goal)
	if err != nil {
		return errors.Wrap(err, "start and goal")
	}
	if s.Bounds.Dim() == 0 {
		s.Bounds = space.Cube(dim, DefaultLow, DefaultHigh)
	}
	if d := s.Bounds.Dim(); d != dim {
		return errors.Wrapf(space.ErrInvalidDimension, "bounds are %d-d, start is %d-d", d, dim)
	}
	for i, o := range s.Obstacles {
		if d := o.Bounds().Dim(); d != dim {
			return errors.Wrapf(space.ErrInvalidDimension, "obstacle %d is %d-d, start is %d-d", i, d, dim)
		}
	}
	if s.Iterations <= 0 {
		return errors.Newf("iterations must be positive, got %d", s.Iterations)
	}
	if s.Steps <= 0 {
		return errors.Newf("steps must be positive, got %d", s.Steps)
	}
	if s.GoalBias < 0 {
		return errors.Newf("goal bias must not be negative, got %d", s.GoalBias)
	}
	if s.Tolerance < 0 {
		return errors.Newf("tolerance must not be negative, got %g", s.Tolerance)
	}
	switch s.Sampler {
	case SamplerUniform:
	case SamplerGaussian:
		if s.Sigma <= 0 {
			return errors.Newf("gaussian sampler needs a positive sigma, got %g", s.Sigma)
		}
	default:
		return errors.Newf("unknown sampler %q", s.Sampler)
	}
	return nil
}

// NewSampler builds the configured sampler, seeded with Seed. When GoalBias
// is set, every GoalBias-th sample is the goal.
func (s *Scenario) NewSampler() (sampler.Sampler, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var (
		base sampler.Sampler
		err  error
	)
	switch s.Sampler {
	case SamplerGaussian:
		base, err = sampler.NewGaussian(s.Goal, s.Sigma, s.Bounds, s.Seed)
	default:
		base, err = sampler.NewUniform(s.Bounds, s.Seed)
	}
	if err != nil {
		return nil, err
	}
	if s.GoalBias == 0 {
		return base, nil
	}
	biased, err := sampler.NewGoalBiased(base, s.Goal, s.GoalBias)
	if err != nil {
		return nil, err
	}
	return biased, nil
}
