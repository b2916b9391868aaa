package join

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// preprocessLeft builds a hash table over the left relation's join column,
// ported from preprocess_left: one entry per non-null row, keyed by the
// row's value (or a hash of its bytes for variable-width types), mapping to
// that row's offset within the left relation.
//
// Python parses the column's null bitmap by hand into a bool-per-row mask;
// Arrow Go's array.Array already exposes IsNull(i) directly, so that part of
// preprocess_left is adapted rather than transliterated -- the value_offset_map
// indirection it builds from the bitmap is exactly "the i'th non-null row's
// offset", which IsNull(i) gives directly without a parallel non-null index.
func preprocessLeft(rec arrow.Record, colIndex int) (*HashTable, error) {
	ht := NewHashTable()
	col := rec.Column(colIndex)

	switch col.(type) {
	case *array.Int64:
		// pyarrow.types.is_integer(array.type)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			key, _ := keyForValue(col, i)
			ht.Insert(key, int32(i))
		}

	case *array.Float64:
		// pyarrow.types.is_fixed_size_binary(array.type) or pyarrow.types.is_floating(array.type)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			key, _ := keyForValue(col, i)
			ht.Insert(key, int32(i))
		}

	case *array.Binary, *array.String:
		// pyarrow.types.is_binary(array.type) or pyarrow.types.is_string(array.type)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			key, _ := keyForValue(col, i)
			ht.Insert(key, int32(i))
		}

	default:
		return nil, unsupportedKeyType(col)
	}

	return ht, nil
}
