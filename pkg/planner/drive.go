package planner

import (
	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// Drive steers from `from` toward `toward` as far as the obstacles allow.
//
// Obstacles are folded in order: the point obstacle i lets us reach becomes
// the target for obstacle i+1. The result is collision-free against each
// obstacle's march but is a greedy approximation of the farthest straight
// advance; reordering obstacles can change it. With no obstacles, or none in
// the way, `toward` is returned unchanged.
//
// `from` is assumed to be collision-free; the result is unspecified otherwise.
func Drive(from, toward space.Point, obstacles []obstacle.Obstacle, steps int) (space.Point, error) {
	if _, err := space.Check(from, toward); err != nil {
		return nil, errors.Wrap(err, "drive")
	}
	target := toward
	for i, o := range obstacles {
		next, err := obstacle.MaxTrajectory(o, from, target, steps)
		if err != nil {
			return nil, errors.Wrapf(err, "drive: obstacle %d", i)
		}
		target = next
	}
	return target, nil
}
