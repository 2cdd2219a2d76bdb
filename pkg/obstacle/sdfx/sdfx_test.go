package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
)

func collides(t *testing.T, o obstacle.Obstacle, p space.Point) bool {
	t.Helper()
	hit, err := o.Collides(p)
	if err != nil {
		t.Fatalf("Collides(%s) error = %v", p, err)
	}
	return hit
}

func TestPolygon(t *testing.T) {
	tri, err := Polygon([]space.Point{space.Pt(1.2, 1.2), space.Pt(2, 2.2), space.Pt(3, 1.2)})
	if err != nil {
		t.Fatalf("Polygon() error = %v", err)
	}
	if !collides(t, tri, space.Pt(2, 1.5)) {
		t.Error("expected (2, 1.5) inside triangle")
	}
	if collides(t, tri, space.Pt(2, 2.5)) {
		t.Error("expected (2, 2.5) outside triangle")
	}
	if collides(t, tri, space.Pt(0, 0)) {
		t.Error("expected origin outside triangle")
	}
	if got := len(tri.(obstacle.Outliner).Outline()); got != 3 {
		t.Errorf("outline has %d vertices, want 3", got)
	}
}

func TestPolygonValidation(t *testing.T) {
	if _, err := Polygon([]space.Point{space.Pt(0, 0), space.Pt(1, 1)}); err == nil {
		t.Error("expected error for two-vertex polygon")
	}
	_, err := Polygon([]space.Point{space.Pt(0, 0), space.Pt(1, 0), space.Pt(1, 1, 1)})
	if !errors.Is(err, space.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestCircle(t *testing.T) {
	c, err := Circle(space.Pt(3, 3), 1)
	if err != nil {
		t.Fatalf("Circle() error = %v", err)
	}
	if !collides(t, c, space.Pt(3.5, 3.5)) {
		t.Error("expected (3.5, 3.5) inside circle")
	}
	if collides(t, c, space.Pt(4.1, 3)) {
		t.Error("expected (4.1, 3) outside circle")
	}

	b := c.Bounds()
	const tol = 0.01
	if math.Abs(b.Min[0]-2) > tol || math.Abs(b.Max[1]-4) > tol {
		t.Errorf("bounds = %v, expected ~[2,2]-[4,4]", b)
	}

	if _, err := c.Collides(space.Pt(3, 3, 3)); !errors.Is(err, space.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
	if _, err := Circle(space.Pt(1, 1, 1), 1); !errors.Is(err, space.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestExtrusion(t *testing.T) {
	base := []space.Point{space.Pt(0, 0), space.Pt(2, 0), space.Pt(2, 2), space.Pt(0, 2)}
	prism, err := Extrusion(base, 1, 3)
	if err != nil {
		t.Fatalf("Extrusion() error = %v", err)
	}
	tests := []struct {
		p    space.Point
		want bool
	}{
		{space.Pt(1, 1, 2), true},
		{space.Pt(1, 1, 0.5), false},
		{space.Pt(1, 1, 3.5), false},
		{space.Pt(3, 1, 2), false},
	}
	for _, tt := range tests {
		if got := collides(t, prism, tt.p); got != tt.want {
			t.Errorf("Collides(%s) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if _, err := Extrusion(base, 3, 1); err == nil {
		t.Error("expected error for inverted z range")
	}
}

func TestSphere(t *testing.T) {
	s, err := Sphere(space.Pt(1, 1, 1), 0.5)
	if err != nil {
		t.Fatalf("Sphere() error = %v", err)
	}
	if !collides(t, s, space.Pt(1, 1, 1.4)) {
		t.Error("expected point inside sphere")
	}
	if collides(t, s, space.Pt(1, 1, 1.6)) {
		t.Error("expected point outside sphere")
	}
	if _, err := s.Collides(space.Pt(1, 1)); !errors.Is(err, space.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestCuboid(t *testing.T) {
	c, err := Cuboid(space.Pt(3, 1, 0), space.Pt(5, 2, 1))
	if err != nil {
		t.Fatalf("Cuboid() error = %v", err)
	}
	if !collides(t, c, space.Pt(4, 1.5, 0.5)) {
		t.Error("expected center inside cuboid")
	}
	if collides(t, c, space.Pt(4, 2.5, 0.5)) {
		t.Error("expected point outside cuboid")
	}

	b := c.Bounds()
	const tol = 0.01
	want := space.Bounds{Min: space.Pt(3, 1, 0), Max: space.Pt(5, 2, 1)}
	for i := 0; i < 3; i++ {
		if math.Abs(b.Min[i]-want.Min[i]) > tol || math.Abs(b.Max[i]-want.Max[i]) > tol {
			t.Errorf("axis %d: bounds = %v, want %v", i, b, want)
		}
	}

	if _, err := Cuboid(space.Pt(0, 0), space.Pt(1, 1)); !errors.Is(err, space.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestShapesWithMaxTrajectory(t *testing.T) {
	c, err := Circle(space.Pt(5, 0), 1)
	if err != nil {
		t.Fatalf("Circle() error = %v", err)
	}
	got, err := obstacle.MaxTrajectory(c, space.Pt(0, 0), space.Pt(10, 0), 100)
	if err != nil {
		t.Fatalf("MaxTrajectory() error = %v", err)
	}
	// The disc starts at x=4, so the walk stops one 0.1 step short of it or
	// exactly on its rim depending on rounding in the distance field.
	if got[0] < 3.9-1e-9 || got[0] > 4+1e-9 || got[1] != 0 {
		t.Errorf("MaxTrajectory() = %s, want x in [3.9, 4]", got)
	}
}
