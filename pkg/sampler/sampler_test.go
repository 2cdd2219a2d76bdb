package sampler

import (
	"testing"

	"github.com/chazu/bramble/pkg/space"
	"github.com/stretchr/testify/require"
)

func TestUniformWithinBounds(t *testing.T) {
	b, err := space.NewBounds(space.Pt(0, -2), space.Pt(6, 2))
	require.NoError(t, err)
	u, err := NewUniform(b, 42)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		p := u.Sample()
		in, err := b.Contains(p)
		require.NoError(t, err)
		require.True(t, in, "sample %s outside bounds", p)
	}
}

func TestUniformReproducible(t *testing.T) {
	b := space.Cube(3, 0, 10)
	a, err := NewUniform(b, 7)
	require.NoError(t, err)
	c, err := NewUniform(b, 7)
	require.NoError(t, err)
	d, err := NewUniform(b, 8)
	require.NoError(t, err)

	differs := false
	for i := 0; i < 20; i++ {
		pa, pc, pd := a.Sample(), c.Sample(), d.Sample()
		require.True(t, pa.Equal(pc), "same seed diverged at %d", i)
		if !pa.Equal(pd) {
			differs = true
		}
	}
	require.True(t, differs, "different seeds produced identical streams")
}

func TestUniformEmptyBounds(t *testing.T) {
	_, err := NewUniform(space.Bounds{}, 1)
	require.Error(t, err)
}

func TestGaussianClamped(t *testing.T) {
	b := space.Cube(2, 0, 1)
	g, err := NewGaussian(space.Pt(0.5, 0.5), 5, b, 3)
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		in, err := b.Contains(g.Sample())
		require.NoError(t, err)
		require.True(t, in)
	}

	_, err = NewGaussian(space.Pt(0.5, 0.5), 0, b, 3)
	require.Error(t, err)
	_, err = NewGaussian(space.Pt(0.5, 0.5, 0.5), 1, b, 3)
	require.Error(t, err)
}

func TestGoalBiased(t *testing.T) {
	goal := space.Pt(5, 5)
	inner := NewSequence(space.Pt(1, 1))
	g, err := NewGoalBiased(inner, goal, 3)
	require.NoError(t, err)

	for call := 1; call <= 9; call++ {
		p := g.Sample()
		if call%3 == 0 {
			require.True(t, p.Equal(goal), "call %d: got %s", call, p)
		} else {
			require.True(t, p.Equal(space.Pt(1, 1)), "call %d: got %s", call, p)
		}
	}

	_, err = NewGoalBiased(inner, goal, 0)
	require.Error(t, err)
	_, err = NewGoalBiased(nil, goal, 2)
	require.Error(t, err)
}

func TestGoalBiasedReturnsCopy(t *testing.T) {
	g, err := NewGoalBiased(NewSequence(space.Pt(0, 0)), space.Pt(5, 5), 1)
	require.NoError(t, err)
	p := g.Sample()
	p[0] = -1
	require.True(t, g.Sample().Equal(space.Pt(5, 5)))
}

func TestSequence(t *testing.T) {
	s := NewSequence(space.Pt(1), space.Pt(2))
	var got []float64
	for i := 0; i < 5; i++ {
		got = append(got, s.Sample()[0])
	}
	require.Equal(t, []float64{1, 2, 1, 2, 1}, got)
	require.Nil(t, NewSequence().Sample())
}

func TestFunc(t *testing.T) {
	var s Sampler = Func(func() space.Point { return space.Pt(4, 2) })
	require.True(t, s.Sample().Equal(space.Pt(4, 2)))
}
