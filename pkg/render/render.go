// Package render draws a planning run as SVG: the space, the obstacles, the
// grown tree and an extracted path, projected onto two axes.
package render

import (
	"io"
	"math"

	"github.com/ajstarks/svgo"
	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/space"
	"github.com/chazu/bramble/pkg/tree"
	"github.com/cockroachdb/errors"
)

// Scene is what gets drawn. Every field but Bounds is optional.
type Scene struct {
	Bounds    space.Bounds
	Obstacles []obstacle.Obstacle
	Tree      *tree.Tree
	Path      []space.Point
	Start     space.Point
	Goal      space.Point
	// Tolerance draws a ring of this radius around Goal when positive.
	Tolerance float64
}

// Options controls the drawing. Zero values pick defaults.
type Options struct {
	// Width of the image in pixels; the height follows the aspect of Bounds.
	Width  int
	Margin int
	// Axes selects the two coordinates that are projected onto x and y.
	Axes [2]int
}

const (
	defaultWidth  = 600
	defaultMargin = 20

	styleBounds   = "fill:white;stroke:black;stroke-width:1"
	styleObstacle = "fill:#999999;stroke:black;stroke-width:1"
	styleBox      = "fill:none;stroke:#999999;stroke-dasharray:4,2"
	styleEdge     = "stroke:red;stroke-width:1"
	stylePath     = "fill:none;stroke:blue;stroke-width:3"
	styleStart    = "fill:green"
	styleGoal     = "fill:orange"
	styleTarget   = "fill:none;stroke:orange;stroke-width:1"
)

// projection maps configurations to pixel coordinates, flipping y so that
// larger values are drawn higher.
type projection struct {
	ax, ay     int
	minX, maxY float64
	scale      float64
	margin     int
}

func (p projection) xy(q space.Point) (int, int) {
	x := float64(p.margin) + (q[p.ax]-p.minX)*p.scale
	y := float64(p.margin) + (p.maxY-q[p.ay])*p.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (p projection) xys(points []space.Point) ([]int, []int) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, q := range points {
		xs[i], ys[i] = p.xy(q)
	}
	return xs, ys
}

// errWriter keeps the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return len(b), nil
	}
	n, err := e.w.Write(b)
	if err != nil {
		e.err = err
	}
	return n, err
}

// SVG writes sc to w.
func SVG(w io.Writer, sc Scene, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Margin <= 0 {
		opts.Margin = defaultMargin
	}
	if opts.Axes == [2]int{} {
		opts.Axes = [2]int{0, 1}
	}
	dim := sc.Bounds.Dim()
	for _, a := range opts.Axes {
		if a < 0 || a >= dim {
			return errors.Wrapf(space.ErrInvalidDimension, "render: axis %d of a %d-d space", a, dim)
		}
	}
	if opts.Axes[0] == opts.Axes[1] {
		return errors.Newf("render: both axes are %d", opts.Axes[0])
	}
	if sc.Tree.Len() > 0 {
		root, err := sc.Tree.Value(tree.Root)
		if err != nil {
			return errors.Wrap(err, "render")
		}
		if root.Dim() != dim {
			return errors.Wrapf(space.ErrInvalidDimension, "render: %d-d tree in a %d-d space", root.Dim(), dim)
		}
	}
	for i, p := range sc.Path {
		if p.Dim() != dim {
			return errors.Wrapf(space.ErrInvalidDimension, "render: path point %d is %d-d", i, p.Dim())
		}
	}

	size := sc.Bounds.Size()
	spanX, spanY := size[opts.Axes[0]], size[opts.Axes[1]]
	if spanX <= 0 || spanY <= 0 {
		return errors.Newf("render: degenerate bounds %v", sc.Bounds)
	}
	inner := opts.Width - 2*opts.Margin
	if inner <= 0 {
		return errors.Newf("render: width %d leaves no room inside margin %d", opts.Width, opts.Margin)
	}
	proj := projection{
		ax:     opts.Axes[0],
		ay:     opts.Axes[1],
		minX:   sc.Bounds.Min[opts.Axes[0]],
		maxY:   sc.Bounds.Max[opts.Axes[1]],
		scale:  float64(inner) / spanX,
		margin: opts.Margin,
	}
	height := int(math.Round(spanY*proj.scale)) + 2*opts.Margin

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(opts.Width, height)

	x0, y0 := proj.xy(sc.Bounds.Min)
	x1, y1 := proj.xy(sc.Bounds.Max)
	canvas.Rect(x0, y1, x1-x0, y0-y1, styleBounds)

	canvas.Gid("obstacles")
	for _, o := range sc.Obstacles {
		drawObstacle(canvas, proj, o)
	}
	canvas.Gend()

	if sc.Tree != nil {
		canvas.Gid("tree")
		for e := range sc.Tree.Edges() {
			ax, ay := proj.xy(e.From)
			bx, by := proj.xy(e.To)
			canvas.Line(ax, ay, bx, by, styleEdge)
		}
		canvas.Gend()
	}

	if len(sc.Path) > 1 {
		xs, ys := proj.xys(sc.Path)
		canvas.Gid("path")
		canvas.Polyline(xs, ys, stylePath)
		canvas.Gend()
	}

	r := max(opts.Width/150, 3)
	if sc.Start.Dim() == dim {
		x, y := proj.xy(sc.Start)
		canvas.Circle(x, y, r, styleStart)
	}
	if sc.Goal.Dim() == dim {
		x, y := proj.xy(sc.Goal)
		canvas.Circle(x, y, r, styleGoal)
		if sc.Tolerance > 0 {
			canvas.Circle(x, y, int(math.Round(sc.Tolerance*proj.scale)), styleTarget)
		}
	}

	canvas.End()
	return errors.Wrap(ew.err, "render")
}

// drawObstacle fills the obstacle outline when it has one and falls back to
// its bounding box otherwise.
func drawObstacle(canvas *svg.SVG, proj projection, o obstacle.Obstacle) {
	if ol, ok := o.(obstacle.Outliner); ok {
		if outline := ol.Outline(); len(outline) >= 3 && outline[0].Dim() > max(proj.ax, proj.ay) {
			xs, ys := proj.xys(outline)
			canvas.Polygon(xs, ys, styleObstacle)
			return
		}
	}
	b := o.Bounds()
	x0, y0 := proj.xy(b.Min)
	x1, y1 := proj.xy(b.Max)
	canvas.Rect(x0, y1, x1-x0, y0-y1, styleBox)
}
