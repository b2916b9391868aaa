package join

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// probe implements inner_join_with_preprocessed_left_side's matching loop:
// for each non-null right-side row, look its key up in the left hash table
// and emit one (leftIndex, rightIndex) pair per match.
//
// The source dispatches across three type families with an if / elif / if
// shape rather than if / elif / elif -- the last branch (binary-or-string)
// is its own independent "if", not chained onto the fixed-width branch's
// elif. That asymmetry is preserved here on purpose rather than normalized
// into a single switch: a column whose pyarrow type satisfied more than one
// predicate (which cannot happen with real Arrow types, but the source
// doesn't structurally rule it out) would fall through both checks in the
// source, and this mirrors that rather than silently "fixing" it.
func probe(col arrow.Array, ht *HashTable) (leftIndexes, rightIndexes []int32) {
	if a, isInt := col.(*array.Int64); isInt {
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			key, _ := keyForValue(a, i)
			rows := ht.Get(key)
			for _, r := range rows {
				leftIndexes = append(leftIndexes, r)
				rightIndexes = append(rightIndexes, int32(i))
			}
		}
	} else if a, isFloat := col.(*array.Float64); isFloat {
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				continue
			}
			key, _ := keyForValue(a, i)
			rows := ht.Get(key)
			for _, r := range rows {
				leftIndexes = append(leftIndexes, r)
				rightIndexes = append(rightIndexes, int32(i))
			}
		}
	}

	if isBinaryOrString(col) {
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			key, _ := keyForValue(col, i)
			rows := ht.Get(key)
			for _, r := range rows {
				leftIndexes = append(leftIndexes, r)
				rightIndexes = append(rightIndexes, int32(i))
			}
		}
	}

	return leftIndexes, rightIndexes
}

func isBinaryOrString(col arrow.Array) bool {
	switch col.(type) {
	case *array.Binary, *array.String:
		return true
	default:
		return false
	}
}
