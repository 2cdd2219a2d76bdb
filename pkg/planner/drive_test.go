package planner

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func parsePoint(t *testing.T, s string) space.Point {
	t.Helper()
	s = strings.Trim(strings.TrimSpace(s), "()")
	var p space.Point
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			t.Fatalf("bad coordinate %q: %v", f, err)
		}
		p = append(p, v)
	}
	return p
}

func pointArg(t *testing.T, d *datadriven.TestData, key string) space.Point {
	t.Helper()
	for _, arg := range d.CmdArgs {
		if arg.Key == key {
			return parsePoint(t, strings.Join(arg.Vals, ","))
		}
	}
	d.Fatalf(t, "missing argument %q", key)
	return nil
}

// formatPoint rounds away the last bits of interpolation noise.
func formatPoint(p space.Point) string {
	r := make(space.Point, len(p))
	for i, c := range p {
		r[i] = math.Round(c*1e9) / 1e9
	}
	return r.String()
}

func formatResult(p space.Point, err error) string {
	if err != nil {
		if errors.Is(err, space.ErrInvalidDimension) {
			return "error: invalid dimension"
		}
		return "error: " + err.Error()
	}
	return formatPoint(p)
}

func TestDriveDataDriven(t *testing.T) {
	datadriven.RunTest(t, "testdata/drive", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "drive":
			from := pointArg(t, d, "from")
			to := pointArg(t, d, "to")
			var steps int
			d.ScanArgs(t, "steps", &steps)

			var obstacles []obstacle.Obstacle
			for _, line := range strings.Split(strings.TrimSpace(d.Input), "\n") {
				fields := strings.Fields(line)
				if len(fields) == 0 {
					continue
				}
				if fields[0] != "box" || len(fields) != 3 {
					d.Fatalf(t, "unknown obstacle line %q", line)
				}
				b, err := obstacle.NewBox(parsePoint(t, fields[1]), parsePoint(t, fields[2]))
				if err != nil {
					d.Fatalf(t, "box: %v", err)
				}
				obstacles = append(obstacles, b)
			}

			got := formatResult(Drive(from, to, obstacles, steps))

			// The broadphase must agree with the plain fold.
			if len(obstacles) > 0 {
				var viaIndex string
				idx, err := newObstacleIndex(from.Dim(), obstacles)
				if err != nil {
					viaIndex = formatResult(nil, err)
				} else {
					viaIndex = formatResult(idx.drive(from, to, steps))
				}
				if viaIndex != got {
					d.Fatalf(t, "broadphase drive = %s, plain drive = %s", viaIndex, got)
				}
			}
			return got
		default:
			return fmt.Sprintf("unknown command: %s", d.Cmd)
		}
	})
}

func TestDriveIdempotentOnClearPaths(t *testing.T) {
	boxes := []obstacle.Obstacle{
		mustBox(t, space.Pt(3, 1), space.Pt(5, 2)),
		mustBox(t, space.Pt(3, 3), space.Pt(5, 4)),
	}
	from := space.Pt(0.3, 0.4)
	to := space.Pt(2.5, 5.5)
	for _, steps := range []int{1, 2, 10, 100, 1000} {
		got, err := Drive(from, to, boxes, steps)
		require.NoError(t, err)
		require.True(t, got.Equal(to), "steps=%d: got %s", steps, got)
	}
}

// TestBroadphaseMatchesFold drives random segments through a field of small
// boxes and checks the R-tree filtered fold against the plain one.
func TestBroadphaseMatchesFold(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	var boxes []obstacle.Obstacle
	for i := 0; i < 60; i++ {
		x, y := rng.Float64()*10, rng.Float64()*10
		boxes = append(boxes, mustBox(t, space.Pt(x, y), space.Pt(x+0.2+rng.Float64()*0.5, y+0.2+rng.Float64()*0.5)))
	}
	idx, err := newObstacleIndex(2, boxes)
	require.NoError(t, err)

	trials := 0
	for trials < 200 {
		from := space.Pt(rng.Float64()*10, rng.Float64()*10)
		if collidesAny(t, boxes, from) {
			continue
		}
		trials++
		to := space.Pt(rng.Float64()*10, rng.Float64()*10)
		want, err := Drive(from, to, boxes, 50)
		require.NoError(t, err)
		got, err := idx.drive(from, to, 50)
		require.NoError(t, err)
		require.True(t, got.Equal(want), "from %s to %s: broadphase %s, fold %s", from, to, got, want)
	}
}

func collidesAny(t *testing.T, obstacles []obstacle.Obstacle, p space.Point) bool {
	t.Helper()
	for _, o := range obstacles {
		hit, err := o.Collides(p)
		require.NoError(t, err)
		if hit {
			return true
		}
	}
	return false
}

func mustBox(t *testing.T, min, max space.Point) *obstacle.Box {
	t.Helper()
	b, err := obstacle.NewBox(min, max)
	require.NoError(t, err)
	return b
}
