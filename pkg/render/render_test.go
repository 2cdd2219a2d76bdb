package render_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/obstacle/sdfx"
	"github.com/chazu/bramble/pkg/render"
	"github.com/chazu/bramble/pkg/space"
	"github.com/chazu/bramble/pkg/tree"
	"github.com/stretchr/testify/require"
)

// sampleScene builds a small scene: two boxes, a circle and a three-node tree.
func sampleScene(t *testing.T) render.Scene {
	t.Helper()
	b1, err := obstacle.NewBox(space.Pt(3, 1), space.Pt(5, 2))
	require.NoError(t, err)
	b2, err := obstacle.NewBox(space.Pt(3, 3), space.Pt(5, 4))
	require.NoError(t, err)
	c, err := sdfx.Circle(space.Pt(1, 5), 0.5)
	require.NoError(t, err)

	tr := tree.New(space.Pt(0.3, 0.4))
	a, err := tr.Append(tree.Root, space.Pt(2, 2.5))
	require.NoError(t, err)
	_, err = tr.Append(a, space.Pt(5, 5))
	require.NoError(t, err)
	_, err = tr.Append(tree.Root, space.Pt(2, 0.2))
	require.NoError(t, err)
	path, err := tr.Path(2)
	require.NoError(t, err)

	return render.Scene{
		Bounds:    space.Cube(2, 0, 6),
		Obstacles: []obstacle.Obstacle{b1, b2, c},
		Tree:      tr,
		Path:      path,
		Start:     space.Pt(0.3, 0.4),
		Goal:      space.Pt(5, 5),
		Tolerance: 0.5,
	}
}

// group returns the markup between <g id="name"> and the next </g>.
func group(t *testing.T, doc, name string) string {
	t.Helper()
	open := `<g id="` + name + `"`
	i := strings.Index(doc, open)
	require.GreaterOrEqual(t, i, 0, "no group %q in output", name)
	rest := doc[i:]
	j := strings.Index(rest, "</g>")
	require.Greater(t, j, 0)
	return rest[:j]
}

func TestSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.SVG(&buf, sampleScene(t), render.Options{}))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "<?xml"), "missing xml header")
	require.Contains(t, out, `width="600"`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))

	obstacles := group(t, out, "obstacles")
	require.Equal(t, 3, strings.Count(obstacles, "<polygon"))

	edges := group(t, out, "tree")
	require.Equal(t, 3, strings.Count(edges, "<line"))
	require.Contains(t, edges, "stroke:red")

	require.Equal(t, 1, strings.Count(group(t, out, "path"), "<polyline"))
	// Start, goal and the goal tolerance ring.
	require.Equal(t, 3, strings.Count(out, "<circle"))
}

func TestSVGProjectionFlipsY(t *testing.T) {
	var buf bytes.Buffer
	sc := render.Scene{
		Bounds: space.Cube(2, 0, 10),
		Start:  space.Pt(0, 0),
		Goal:   space.Pt(10, 10),
	}
	require.NoError(t, render.SVG(&buf, sc, render.Options{Width: 120, Margin: 10}))
	out := buf.String()
	// 100 px for 10 units: the start sits bottom-left, the goal top-right.
	require.Contains(t, out, `<circle cx="10" cy="110"`)
	require.Contains(t, out, `<circle cx="110" cy="10"`)
}

func TestSVGFallsBackToBounds(t *testing.T) {
	var buf bytes.Buffer
	sphere, err := sdfx.Sphere(space.Pt(5, 5, 5), 1)
	require.NoError(t, err)
	sc := render.Scene{
		Bounds:    space.Cube(3, 0, 10),
		Obstacles: []obstacle.Obstacle{sphere},
	}
	// Projected onto x and z, the sphere's planar outline does not apply.
	require.NoError(t, render.SVG(&buf, sc, render.Options{Axes: [2]int{0, 2}}))
	obstacles := group(t, buf.String(), "obstacles")
	require.Equal(t, 0, strings.Count(obstacles, "<polygon"))
	require.Equal(t, 1, strings.Count(obstacles, "<rect"))
}

func TestSVGErrors(t *testing.T) {
	tr := tree.New(space.Pt(0, 0, 0))
	tests := []struct {
		name string
		sc   render.Scene
		opts render.Options
	}{
		{"no bounds", render.Scene{}, render.Options{}},
		{"axis out of range", render.Scene{Bounds: space.Cube(2, 0, 1)}, render.Options{Axes: [2]int{0, 2}}},
		{"same axis twice", render.Scene{Bounds: space.Cube(2, 0, 1)}, render.Options{Axes: [2]int{1, 1}}},
		{"flat bounds", render.Scene{Bounds: space.Cube(2, 1, 1)}, render.Options{}},
		{"tree arity", render.Scene{Bounds: space.Cube(2, 0, 1), Tree: tr}, render.Options{}},
		{"margin too wide", render.Scene{Bounds: space.Cube(2, 0, 1)}, render.Options{Width: 30, Margin: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.Error(t, render.SVG(&buf, tt.sc, tt.opts))
			require.Zero(t, buf.Len(), "nothing should be written on a rejected scene")
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSVGReportsWriteErrors(t *testing.T) {
	err := render.SVG(failingWriter{}, sampleScene(t), render.Options{})
	require.ErrorContains(t, err, "disk full")
}
