package functions

// RegisterAggregates installs the minimal aggregator set CascadeQL's end to
// end scenarios exercise (spec §8: "SELECT COUNT(*) FROM tweets GROUP BY
// userid"). Kept in a distinct registry from the scalar functions per
// design note §9 ("Keep this separation explicit: two registries, one
// lookup key"); functions.Combined merges the two only for the binder's
// single name lookup.
func RegisterAggregates(r Registry) {
	r.Register("COUNT", func(args ...any) (any, error) {
		rows, ok := args[0].([]any)
		if !ok {
			return int64(0), nil
		}
		count := int64(0)
		for _, v := range rows {
			if v != nil {
				count++
			}
		}
		return count, nil
	})

	r.Register("SUM", func(args ...any) (any, error) {
		rows, ok := args[0].([]any)
		if !ok {
			return float64(0), nil
		}
		var sum float64
		for _, v := range rows {
			f, ok := toFloat(v)
			if ok {
				sum += f
			}
		}
		return sum, nil
	})

	r.Register("MIN", func(args ...any) (any, error) {
		return reduceFloat(args, func(acc, v float64) float64 {
			if v < acc {
				return v
			}
			return acc
		})
	})

	r.Register("MAX", func(args ...any) (any, error) {
		return reduceFloat(args, func(acc, v float64) float64 {
			if v > acc {
				return v
			}
			return acc
		})
	})
}

func reduceFloat(args []any, combine func(acc, v float64) float64) (any, error) {
	rows, ok := args[0].([]any)
	if !ok || len(rows) == 0 {
		return nil, nil
	}
	acc, _ := toFloat(rows[0])
	for _, v := range rows[1:] {
		f, ok := toFloat(v)
		if ok {
			acc = combine(acc, f)
		}
	}
	return acc, nil
}
