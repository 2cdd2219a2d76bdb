package planner

import (
	"math"
	"slices"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
	"github.com/dhconnelly/rtreego"
)

const (
	minChildren = 4
	maxChildren = 16

	// boundsPad widens every rectangle handed to the R-tree. rtreego rejects
	// zero-length sides, and a slightly larger query only admits more
	// candidates, never fewer.
	boundsPad = 1e-9
)

// indexedObstacle records an obstacle's position in the caller's slice so
// that candidates can be folded in the original order.
type indexedObstacle struct {
	pos  int
	rect rtreego.Rect
}

func (o *indexedObstacle) Bounds() rtreego.Rect {
	return o.rect
}

// obstacleIndex is a broadphase over obstacle bounds. It only filters out
// obstacles whose bounds cannot meet the segment being driven; the fold over
// the remaining ones is unchanged, so results match Drive exactly as long as
// every obstacle's Bounds encloses its occupied region.
type obstacleIndex struct {
	dim       int
	obstacles []obstacle.Obstacle
	rt        *rtreego.Rtree
}

func toRect(b space.Bounds) (rtreego.Rect, error) {
	origin := make(rtreego.Point, b.Dim())
	lengths := make([]float64, b.Dim())
	for i := range origin {
		pad := boundsPad * (1 + math.Max(math.Abs(b.Min[i]), math.Abs(b.Max[i])))
		origin[i] = b.Min[i] - pad
		lengths[i] = b.Max[i] - b.Min[i] + 2*pad
	}
	return rtreego.NewRect(origin, lengths)
}

func newObstacleIndex(dim int, obstacles []obstacle.Obstacle) (*obstacleIndex, error) {
	idx := &obstacleIndex{
		dim:       dim,
		obstacles: obstacles,
		rt:        rtreego.NewTree(dim, minChildren, maxChildren),
	}
	for i, o := range obstacles {
		if d := o.Bounds().Dim(); d != dim {
			return nil, errors.Wrapf(space.ErrInvalidDimension, "index obstacle %d: %d-d bounds in a %d-d index", i, d, dim)
		}
		r, err := toRect(o.Bounds())
		if err != nil {
			return nil, errors.Wrapf(err, "index obstacle %d", i)
		}
		idx.rt.Insert(&indexedObstacle{pos: i, rect: r})
	}
	return idx, nil
}

// candidates returns, in their original order, the obstacles whose bounds
// meet the box spanned by from and toward.
func (idx *obstacleIndex) candidates(from, toward space.Point) ([]obstacle.Obstacle, error) {
	q, err := toRect(space.Span(from, toward))
	if err != nil {
		return nil, err
	}
	hits := idx.rt.SearchIntersect(q)
	if len(hits) == 0 {
		return nil, nil
	}
	positions := make([]int, len(hits))
	for i, h := range hits {
		positions[i] = h.(*indexedObstacle).pos
	}
	slices.Sort(positions)
	out := make([]obstacle.Obstacle, len(positions))
	for i, pos := range positions {
		out[i] = idx.obstacles[pos]
	}
	return out, nil
}

// drive is Drive restricted to the broadphase candidates.
func (idx *obstacleIndex) drive(from, toward space.Point, steps int) (space.Point, error) {
	dim, err := space.Check(from, toward)
	if err != nil {
		return nil, errors.Wrap(err, "drive")
	}
	if dim != idx.dim {
		return nil, errors.Wrapf(space.ErrInvalidDimension, "drive: %d-d segment in a %d-d index", dim, idx.dim)
	}
	near, err := idx.candidates(from, toward)
	if err != nil {
		return nil, errors.Wrap(err, "drive")
	}
	return Drive(from, toward, near, steps)
}
