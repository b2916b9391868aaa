package functions

import (
	"fmt"
	"math"
	"math/rand"
)

// RegisterNumberFunctions installs PI/ROUND/RANDOM/RANDOM_NORMAL, ported
// from original_source/opteryx/functions/number_functions.py -- a
// supplemented feature per SPEC_FULL.md (present in the original source,
// dropped by the spec.md distillation).
func RegisterNumberFunctions(r Registry) {
	r.Register("PI", func(args ...any) (any, error) {
		return math.Pi, nil
	})

	r.Register("ROUND", func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("ROUND requires at least one argument")
		}
		v, ok := toFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("ROUND expects a numeric first argument")
		}
		if len(args) == 1 {
			return math.Round(v), nil
		}
		// The second parameter is a fixed value (number_functions.py:
		// "the second parameter is a fixed value").
		places, ok := toFloat(args[1])
		if !ok {
			return nil, fmt.Errorf("ROUND expects a numeric precision argument")
		}
		scale := math.Pow(10, places)
		return math.Round(v*scale) / scale, nil
	})

	r.Register("RANDOM", func(args ...any) (any, error) {
		size, ok := toInt(argOrDefault(args, 0, int64(1)))
		if !ok {
			return nil, fmt.Errorf("RANDOM expects an integer size argument")
		}
		out := make([]float64, size)
		for i := range out {
			out[i] = rand.Float64()
		}
		return out, nil
	})

	r.Register("RANDOM_NORMAL", func(args ...any) (any, error) {
		size, ok := toInt(argOrDefault(args, 0, int64(1)))
		if !ok {
			return nil, fmt.Errorf("RANDOM_NORMAL expects an integer size argument")
		}
		out := make([]float64, size)
		for i := range out {
			out[i] = rand.NormFloat64()
		}
		return out, nil
	})
}

func argOrDefault(args []any, i int, def any) any {
	if i < len(args) {
		return args[i]
	}
	return def
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
