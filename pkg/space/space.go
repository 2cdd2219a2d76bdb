// Package space defines configurations (points in the planning space) and
// axis-aligned bounds over them. Points are treated as immutable values:
// nothing in this module mutates a Point after it has been created.
package space

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidDimension is returned when points, bounds or obstacles that take
// part in the same computation disagree in arity.
var ErrInvalidDimension = errors.New("invalid dimension")

// Point is an N-dimensional configuration.
type Point []float64

// Pt builds a Point from its coordinates.
func Pt(coords ...float64) Point {
	return Point(coords).Clone()
}

// Dim returns the arity of the point.
func (p Point) Dim() int {
	return len(p)
}

// Clone returns a copy that shares no storage with p.
func (p Point) Clone() Point {
	if p == nil {
		return nil
	}
	q := make(Point, len(p))
	copy(q, p)
	return q
}

// Equal reports whether p and q have the same arity and coordinates.
func (p Point) Equal(q Point) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) (float64, error) {
	if len(p) != len(q) {
		return 0, errors.Wrapf(ErrInvalidDimension, "distance between %d-d and %d-d points", len(p), len(q))
	}
	var sum float64
	for i := range p {
		d := p[i] - q[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Lerp returns the point a fraction t of the way from p to q.
// The caller is responsible for p and q having the same arity.
func (p Point) Lerp(q Point, t float64) Point {
	r := make(Point, len(p))
	for i := range p {
		r[i] = p[i] + (q[i]-p[i])*t
	}
	return r
}

func (p Point) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range p {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Check verifies that all points share one non-zero arity and returns it.
func Check(points ...Point) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	dim := points[0].Dim()
	if dim == 0 {
		return 0, errors.Wrap(ErrInvalidDimension, "zero-dimensional point")
	}
	for i, p := range points[1:] {
		if p.Dim() != dim {
			return 0, errors.Wrapf(ErrInvalidDimension, "point %d has %d coordinates, want %d", i+1, p.Dim(), dim)
		}
	}
	return dim, nil
}
