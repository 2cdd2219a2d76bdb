// Package obstacle defines the collision capability consumed by the planner.
// Shape implementations (boxes here, SDF shapes in the sdfx subpackage)
// provide a point-in-shape test behind the Obstacle interface; the planner
// never needs to know which shape it is clipping against.
package obstacle

import (
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// Obstacle is an occupied region of the configuration space.
type Obstacle interface {
	// Collides reports whether p lies in occupied space. It returns
	// space.ErrInvalidDimension when p's arity does not match the obstacle.
	Collides(p space.Point) (bool, error)

	// Bounds returns an axis-aligned box enclosing the obstacle.
	Bounds() space.Bounds
}

// Trajectory is implemented by obstacles that compute the farthest
// collision-free point along a segment themselves rather than relying on
// the generic march in MaxTrajectory.
type Trajectory interface {
	MaxTrajectory(from, to space.Point, steps int) (space.Point, error)
}

// Outliner is implemented by obstacles that can describe a closed outline
// for renderers.
type Outliner interface {
	Outline() []space.Point
}

// MaxTrajectory returns the farthest point reachable by walking from `from`
// toward `to` without entering o.
//
// The walk tests the points from + (to-from)·i/steps for i = 1..steps. The
// point just before the first colliding one is returned (`from` itself when
// the first step collides). When nothing collides, `to` is returned exactly.
// A steps value below 1 tests the endpoint only. A segment whose bounding
// box misses o.Bounds() returns `to` without testing any point.
func MaxTrajectory(o Obstacle, from, to space.Point, steps int) (space.Point, error) {
	if t, ok := o.(Trajectory); ok {
		return t.MaxTrajectory(from, to, steps)
	}
	dim, err := space.Check(from, to)
	if err != nil {
		return nil, errors.Wrap(err, "max trajectory")
	}
	if b := o.Bounds(); b.Dim() == dim && !space.Span(from, to).Intersects(b) {
		return to, nil
	}
	if steps < 1 {
		steps = 1
	}
	prev := from
	for i := 1; i <= steps; i++ {
		p := to
		if i < steps {
			p = from.Lerp(to, float64(i)/float64(steps))
		}
		hit, err := o.Collides(p)
		if err != nil {
			return nil, errors.Wrap(err, "max trajectory")
		}
		if hit {
			return prev, nil
		}
		prev = p
	}
	return to, nil
}
