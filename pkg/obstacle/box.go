package obstacle

import (
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

// Compile-time interface checks.
var _ Obstacle = (*Box)(nil)
var _ Outliner = (*Box)(nil)

// Box is an axis-aligned box. Its boundary counts as occupied.
type Box struct {
	bounds space.Bounds
}

// NewBox returns the box spanning the lower corner min and upper corner max.
func NewBox(min, max space.Point) (*Box, error) {
	b, err := space.NewBounds(min, max)
	if err != nil {
		return nil, errors.Wrap(err, "box")
	}
	return &Box{bounds: b}, nil
}

// Collides reports whether p is inside the closed box.
func (b *Box) Collides(p space.Point) (bool, error) {
	return b.bounds.Contains(p)
}

// Bounds returns the box itself.
func (b *Box) Bounds() space.Bounds {
	return b.bounds
}

// Outline returns the box's footprint on the first two axes, counter-clockwise
// from the lower corner.
func (b *Box) Outline() []space.Point {
	lo, hi := b.bounds.Min, b.bounds.Max
	if lo.Dim() < 2 {
		return []space.Point{lo, hi}
	}
	return []space.Point{
		space.Pt(lo[0], lo[1]),
		space.Pt(hi[0], lo[1]),
		space.Pt(hi[0], hi[1]),
		space.Pt(lo[0], hi[1]),
	}
}
