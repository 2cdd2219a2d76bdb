package space

import "github.com/cockroachdb/errors"

// Bounds is a closed axis-aligned region [Min, Max].
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewBounds validates and returns the bounds spanning min and max.
func NewBounds(min, max Point) (Bounds, error) {
	if _, err := Check(min, max); err != nil {
		return Bounds{}, errors.Wrap(err, "bounds")
	}
	for i := range min {
		if min[i] > max[i] {
			return Bounds{}, errors.Newf("bounds: min %s exceeds max %s on axis %d", min, max, i)
		}
	}
	return Bounds{Min: min.Clone(), Max: max.Clone()}, nil
}

// Cube returns the bounds [lo, hi] on every one of dim axes.
func Cube(dim int, lo, hi float64) Bounds {
	b := Bounds{Min: make(Point, dim), Max: make(Point, dim)}
	for i := 0; i < dim; i++ {
		b.Min[i] = lo
		b.Max[i] = hi
	}
	return b
}

// Dim returns the arity of the bounds.
func (b Bounds) Dim() int {
	return len(b.Min)
}

// Size returns the extent along each axis.
func (b Bounds) Size() Point {
	s := make(Point, len(b.Min))
	for i := range b.Min {
		s[i] = b.Max[i] - b.Min[i]
	}
	return s
}

// Contains reports whether p lies inside the closed bounds.
func (b Bounds) Contains(p Point) (bool, error) {
	if p.Dim() != b.Dim() {
		return false, errors.Wrapf(ErrInvalidDimension, "%d-d point against %d-d bounds", p.Dim(), b.Dim())
	}
	for i := range p {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false, nil
		}
	}
	return true, nil
}

// Intersects reports whether two closed bounds of equal arity overlap.
func (b Bounds) Intersects(o Bounds) bool {
	if b.Dim() != o.Dim() {
		return false
	}
	for i := range b.Min {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Span returns the smallest bounds containing both p and q.
func Span(p, q Point) Bounds {
	b := Bounds{Min: make(Point, len(p)), Max: make(Point, len(p))}
	for i := range p {
		b.Min[i], b.Max[i] = p[i], q[i]
		if q[i] < p[i] {
			b.Min[i], b.Max[i] = q[i], p[i]
		}
	}
	return b
}
