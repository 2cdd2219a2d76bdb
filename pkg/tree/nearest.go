package tree

import (
	"math"

	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// Nearest returns the index of the value closest to target by Euclidean
// distance. Ties go to the earliest index. The scan is linear; the planner
// calls it once per iteration, so a run costs O(iterations²), which is fine
// at the few-thousand-node scale this module targets.
func Nearest(target space.Point, values []space.Point) (int, error) {
	return nearest(target, len(values), func(i int) space.Point { return values[i] })
}

// Nearest returns the node closest to target, scanning in insertion order.
func (t *Tree) Nearest(target space.Point) (NodeID, error) {
	i, err := nearest(target, t.Len(), func(i int) space.Point { return t.nodes[i].Value })
	if err != nil {
		return NoNode, err
	}
	return NodeID(i), nil
}

func nearest(target space.Point, n int, value func(int) space.Point) (int, error) {
	if n == 0 {
		return -1, errors.Wrap(ErrInvalidNode, "nearest over an empty node set")
	}
	best, bestDist := 0, math.Inf(1)
	for i := 0; i < n; i++ {
		d, err := target.Distance(value(i))
		if err != nil {
			return -1, errors.Wrapf(err, "nearest: node %d", i)
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// Reach returns the node nearest to goal when it lies within tolerance.
func (t *Tree) Reach(goal space.Point, tolerance float64) (NodeID, bool, error) {
	id, err := t.Nearest(goal)
	if err != nil {
		return NoNode, false, err
	}
	d, err := goal.Distance(t.nodes[id].Value)
	if err != nil {
		return NoNode, false, err
	}
	if d > tolerance {
		return NoNode, false, nil
	}
	return id, true, nil
}
