package scenario

import (
	"fmt"
	"strings"

	"github.com/chazu/bramble/pkg/obstacle"
	"github.com/chazu/bramble/pkg/obstacle/sdfx"
	"github.com/chazu/bramble/pkg/space"
	"github.com/cockroachdb/errors"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     so builtins can tell keywords from positional arguments.
//
//  2. Kebab-case to underscore: goal-bias -> goal_bias
//     zygomys reads a hyphen as the subtraction operator.
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only a hyphen between identifier characters; a minus operator or a
		// negative literal is left alone.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a configuration built by `vec`.
type sexpPoint struct {
	p space.Point
}

func (v *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return "(vec " + strings.Trim(v.p.String(), "()") + ")"
}
func (v *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpObstacle is returned by the shape builtins so scripts can bind them.
type sexpObstacle struct {
	kind  string
	index int
}

func (o *sexpObstacle) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", o.kind, o.index)
}
func (o *sexpObstacle) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// require returns the keyword argument name or an error naming the builtin.
func (a kwArgs) require(fn, name string) (zygo.Sexp, error) {
	v, ok := a.kw[name]
	if !ok {
		return nil, errors.Newf("%s: missing :%s", fn, name)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, errors.Newf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, errors.Newf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", errors.Newf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toPoint accepts a `vec` value or a plain list/array of numbers.
func toPoint(s zygo.Sexp) (space.Point, error) {
	if v, ok := s.(*sexpPoint); ok {
		return v.p.Clone(), nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, errors.Newf("expected vec, got %T (%s)", s, s.SexpString(nil))
	}
	return toCoords(items)
}

func toCoords(items []zygo.Sexp) (space.Point, error) {
	if len(items) == 0 {
		return nil, errors.Wrap(space.ErrInvalidDimension, "vector needs at least one coordinate")
	}
	p := make(space.Point, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, errors.Wrapf(err, "coordinate %d", i)
		}
		p[i] = f
	}
	return p, nil
}

func toPoints(items []zygo.Sexp) ([]space.Point, error) {
	out := make([]space.Point, len(items))
	for i, item := range items {
		p, err := toPoint(item)
		if err != nil {
			return nil, errors.Wrapf(err, "vertex %d", i)
		}
		out[i] = p
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, errors.Newf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder accumulates the Scenario while a script runs.
type builder struct {
	sc *Scenario
}

func (b *builder) add(kind string, o obstacle.Obstacle) zygo.Sexp {
	b.sc.Obstacles = append(b.sc.Obstacles, o)
	return &sexpObstacle{kind: kind, index: len(b.sc.Obstacles) - 1}
}

// setter registers a single-argument builtin that stores into the scenario.
func setter(fn string, set func(zygo.Sexp) error) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, errors.Newf("%s requires exactly 1 argument, got %d", fn, len(args))
		}
		if err := set(args[0]); err != nil {
			return zygo.SexpNull, errors.Wrap(err, fn)
		}
		return zygo.SexpNull, nil
	}
}

// registerBuiltins installs the scene builtins into env. Source must be
// preprocessed with preprocessSource so :keyword tokens are recognizable.
// Builtins whose names contain hyphens are registered with underscores.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	sc := b.sc

	// (vec 1 2) or (vec 1 2 3)
	env.AddFunction("vec", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toCoords(args)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "vec")
		}
		return &sexpPoint{p: p}, nil
	})

	// (space :min (vec 0 0) :max (vec 6 6))
	env.AddFunction("space", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var corners [2]space.Point
		for i, key := range []string{"min", "max"} {
			v, err := pa.require("space", key)
			if err != nil {
				return zygo.SexpNull, err
			}
			if corners[i], err = toPoint(v); err != nil {
				return zygo.SexpNull, errors.Wrapf(err, "space: %s", key)
			}
		}
		bounds, err := space.NewBounds(corners[0], corners[1])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "space")
		}
		sc.Bounds = bounds
		return zygo.SexpNull, nil
	})

	env.AddFunction("start", setter("start", func(s zygo.Sexp) (err error) {
		sc.Start, err = toPoint(s)
		return err
	}))
	env.AddFunction("goal", setter("goal", func(s zygo.Sexp) (err error) {
		sc.Goal, err = toPoint(s)
		return err
	}))

	// (box (vec 3 1) (vec 5 2)); rect is the same shape under its 2D name.
	for _, fn := range []string{"box", "rect"} {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, errors.Newf("%s requires min and max corners, got %d arguments", fn, len(args))
			}
			corners, err := toPoints(args)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, fn)
			}
			o, err := obstacle.NewBox(corners[0], corners[1])
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, fn)
			}
			return b.add(fn, o), nil
		})
	}

	// (cuboid (vec 0 0 0) (vec 1 1 1))
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, errors.Newf("cuboid requires min and max corners, got %d arguments", len(args))
		}
		corners, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "cuboid")
		}
		o, err := sdfx.Cuboid(corners[0], corners[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return b.add("cuboid", o), nil
	})

	// (polygon (vec 0 0) (vec 2 0) (vec 1 2)) or (polygon (list ...))
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 1 {
			if items, err := sexpListToSlice(args[0]); err == nil {
				args = items
			}
		}
		vertices, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "polygon")
		}
		o, err := sdfx.Polygon(vertices)
		if err != nil {
			return zygo.SexpNull, err
		}
		return b.add("polygon", o), nil
	})

	// (circle :center (vec 2 2) :radius 1)
	// (sphere :center (vec 2 2 2) :radius 1)
	round := map[string]func(space.Point, float64) (obstacle.Obstacle, error){
		"circle": sdfx.Circle,
		"sphere": sdfx.Sphere,
	}
	for fn, build := range round {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			cv, err := pa.require(fn, "center")
			if err != nil {
				return zygo.SexpNull, err
			}
			center, err := toPoint(cv)
			if err != nil {
				return zygo.SexpNull, errors.Wrapf(err, "%s: center", fn)
			}
			rv, err := pa.require(fn, "radius")
			if err != nil {
				return zygo.SexpNull, err
			}
			r, err := toFloat64(rv)
			if err != nil {
				return zygo.SexpNull, errors.Wrapf(err, "%s: radius", fn)
			}
			o, err := build(center, r)
			if err != nil {
				return zygo.SexpNull, err
			}
			return b.add(fn, o), nil
		})
	}

	// (extrude :base (list (vec 0 0) (vec 1 0) (vec 1 1)) :from 0 :to 2)
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bv, err := pa.require("extrude", "base")
		if err != nil {
			return zygo.SexpNull, err
		}
		items, err := sexpListToSlice(bv)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "extrude: base")
		}
		base, err := toPoints(items)
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "extrude: base")
		}
		var z [2]float64
		for i, key := range []string{"from", "to"} {
			v, err := pa.require("extrude", key)
			if err != nil {
				return zygo.SexpNull, err
			}
			if z[i], err = toFloat64(v); err != nil {
				return zygo.SexpNull, errors.Wrapf(err, "extrude: %s", key)
			}
		}
		o, err := sdfx.Extrusion(base, z[0], z[1])
		if err != nil {
			return zygo.SexpNull, err
		}
		return b.add("extrude", o), nil
	})

	env.AddFunction("iterations", setter("iterations", func(s zygo.Sexp) error {
		n, err := toInt(s)
		sc.Iterations = int(n)
		return err
	}))
	env.AddFunction("steps", setter("steps", func(s zygo.Sexp) error {
		n, err := toInt(s)
		sc.Steps = int(n)
		return err
	}))
	env.AddFunction("seed", setter("seed", func(s zygo.Sexp) error {
		n, err := toInt(s)
		if err == nil && n < 0 {
			return errors.Newf("must not be negative, got %d", n)
		}
		sc.Seed = uint64(n)
		return err
	}))
	env.AddFunction("goal_bias", setter("goal-bias", func(s zygo.Sexp) error {
		n, err := toInt(s)
		sc.GoalBias = int(n)
		return err
	}))
	env.AddFunction("tolerance", setter("tolerance", func(s zygo.Sexp) error {
		f, err := toFloat64(s)
		sc.Tolerance = f
		return err
	}))

	// (sampler :uniform) or (sampler :gaussian :sigma 1.5)
	env.AddFunction("sampler", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, errors.New("sampler requires a kind")
		}
		kind, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "sampler")
		}
		pa := parseArgs(args[1:])
		switch SamplerKind(kind) {
		case SamplerUniform:
			sc.Sampler = SamplerUniform
		case SamplerGaussian:
			v, err := pa.require("sampler", "sigma")
			if err != nil {
				return zygo.SexpNull, err
			}
			sigma, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, errors.Wrap(err, "sampler: sigma")
			}
			sc.Sampler, sc.Sigma = SamplerGaussian, sigma
		default:
			return zygo.SexpNull, errors.Newf("sampler: unknown kind %q, expected uniform or gaussian", kind)
		}
		return zygo.SexpNull, nil
	})
}
