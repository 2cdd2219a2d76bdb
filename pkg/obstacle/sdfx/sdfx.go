// Package sdfx implements obstacle shapes on top of the
// github.com/deadsy/sdfx signed distance field library. A point collides
// with a shape when its signed distance is zero or negative.
package sdfx

import (
	"math"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ obstacle.Obstacle = (*shape2)(nil)
	_ obstacle.Outliner = (*shape2)(nil)
	_ obstacle.Obstacle = (*shape3)(nil)
	_ obstacle.Outliner = (*shape3)(nil)
)

// outlineSegments controls how finely round shapes are outlined for renderers.
const outlineSegments = 48

// shape2 wraps an sdf.SDF2 as a planar obstacle.
type shape2 struct {
	s       sdf.SDF2
	outline []space.Point
}

func (o *shape2) Collides(p space.Point) (bool, error) {
	if p.Dim() != 2 {
		return false, errors.Wrapf(space.ErrInvalidDimension, "%d-d point against planar shape", p.Dim())
	}
	return o.s.Evaluate(v2.Vec{X: p[0], Y: p[1]}) <= 0, nil
}

func (o *shape2) Bounds() space.Bounds {
	bb := o.s.BoundingBox()
	return space.Bounds{
		Min: space.Pt(bb.Min.X, bb.Min.Y),
		Max: space.Pt(bb.Max.X, bb.Max.Y),
	}
}

func (o *shape2) Outline() []space.Point {
	return o.outline
}

// shape3 wraps an sdf.SDF3 as a spatial obstacle.
type shape3 struct {
	s       sdf.SDF3
	outline []space.Point
}

func (o *shape3) Collides(p space.Point) (bool, error) {
	if p.Dim() != 3 {
		return false, errors.Wrapf(space.ErrInvalidDimension, "%d-d point against spatial shape", p.Dim())
	}
	return o.s.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]}) <= 0, nil
}

func (o *shape3) Bounds() space.Bounds {
	bb := o.s.BoundingBox()
	return space.Bounds{
		Min: space.Pt(bb.Min.X, bb.Min.Y, bb.Min.Z),
		Max: space.Pt(bb.Max.X, bb.Max.Y, bb.Max.Z),
	}
}

// Outline returns the footprint of the shape on the XY plane.
func (o *shape3) Outline() []space.Point {
	return o.outline
}

// toVec2s converts planar points to sdfx vectors.
func toVec2s(vertices []space.Point) ([]v2.Vec, error) {
	out := make([]v2.Vec, len(vertices))
	for i, v := range vertices {
		if v.Dim() != 2 {
			return nil, errors.Wrapf(space.ErrInvalidDimension, "vertex %d has %d coordinates, want 2", i, v.Dim())
		}
		out[i] = v2.Vec{X: v[0], Y: v[1]}
	}
	return out, nil
}

func cloneAll(points []space.Point) []space.Point {
	out := make([]space.Point, len(points))
	for i, p := range points {
		out[i] = p.Clone()
	}
	return out
}

// ring samples a circle of radius r around (cx, cy).
func ring(cx, cy, r float64) []space.Point {
	out := make([]space.Point, outlineSegments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / outlineSegments
		out[i] = space.Pt(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return out
}

// Polygon returns a planar obstacle bounded by the closed polygon through
// vertices. The last vertex connects back to the first.
func Polygon(vertices []space.Point) (obstacle.Obstacle, error) {
	if len(vertices) < 3 {
		return nil, errors.Newf("polygon: need at least 3 vertices, got %d", len(vertices))
	}
	vs, err := toVec2s(vertices)
	if err != nil {
		return nil, errors.Wrap(err, "polygon")
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, errors.Wrap(err, "polygon")
	}
	return &shape2{s: s, outline: cloneAll(vertices)}, nil
}

// Circle returns a planar disc obstacle.
func Circle(center space.Point, radius float64) (obstacle.Obstacle, error) {
	if center.Dim() != 2 {
		return nil, errors.Wrapf(space.ErrInvalidDimension, "circle: center has %d coordinates, want 2", center.Dim())
	}
	s, err := sdf.Circle2D(radius)
	if err != nil {
		return nil, errors.Wrap(err, "circle")
	}
	m := sdf.Translate2d(v2.Vec{X: center[0], Y: center[1]})
	return &shape2{
		s:       sdf.Transform2D(s, m),
		outline: ring(center[0], center[1], radius),
	}, nil
}

// Extrusion returns a prism: the polygon through base vertices, extruded
// along Z from zmin to zmax.
func Extrusion(base []space.Point, zmin, zmax float64) (obstacle.Obstacle, error) {
	if zmax <= zmin {
		return nil, errors.Newf("extrusion: zmax %g must exceed zmin %g", zmax, zmin)
	}
	if len(base) < 3 {
		return nil, errors.Newf("extrusion: need at least 3 base vertices, got %d", len(base))
	}
	vs, err := toVec2s(base)
	if err != nil {
		return nil, errors.Wrap(err, "extrusion")
	}
	footprint, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, errors.Wrap(err, "extrusion")
	}
	// Extrude3D centers the prism on z=0.
	height := zmax - zmin
	s := sdf.Extrude3D(footprint, height)
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: zmin + height/2})
	return &shape3{s: sdf.Transform3D(s, m), outline: cloneAll(base)}, nil
}

// Sphere returns a ball obstacle.
func Sphere(center space.Point, radius float64) (obstacle.Obstacle, error) {
	if center.Dim() != 3 {
		return nil, errors.Wrapf(space.ErrInvalidDimension, "sphere: center has %d coordinates, want 3", center.Dim())
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, errors.Wrap(err, "sphere")
	}
	m := sdf.Translate3d(v3.Vec{X: center[0], Y: center[1], Z: center[2]})
	return &shape3{
		s:       sdf.Transform3D(s, m),
		outline: ring(center[0], center[1], radius),
	}, nil
}

// Cuboid returns a solid box spanning min to max. Unlike obstacle.Box it
// goes through the SDF kernel, so it composes with the other shapes here.
func Cuboid(min, max space.Point) (obstacle.Obstacle, error) {
	b, err := space.NewBounds(min, max)
	if err != nil {
		return nil, errors.Wrap(err, "cuboid")
	}
	if b.Dim() != 3 {
		return nil, errors.Wrapf(space.ErrInvalidDimension, "cuboid: %d-d corners, want 3", b.Dim())
	}
	size := b.Size()
	s, err := sdf.Box3D(v3.Vec{X: size[0], Y: size[1], Z: size[2]}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "cuboid")
	}
	// sdf.Box3D centers the box at the origin.
	m := sdf.Translate3d(v3.Vec{
		X: min[0] + size[0]/2,
		Y: min[1] + size[1]/2,
		Z: min[2] + size[2]/2,
	})
	return &shape3{
		s: sdf.Transform3D(s, m),
		outline: []space.Point{
			space.Pt(min[0], min[1]),
			space.Pt(max[0], min[1]),
			space.Pt(max[0], max[1]),
			space.Pt(min[0], max[1]),
		},
	}, nil
}
