package join

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/spaolacci/murmur3"
)

// keyForValue computes the hash-table key for row i of arr, dispatching by
// physical type the way preprocess_left/inner_join_with_preprocessed_left_side
// dispatch on pyarrow.types.is_integer / is_fixed_size_binary / is_floating /
// is_binary / is_string. Only Int64, Float64, Binary and String arrays have a
// case here; ok is false for every other type, including fixed-size binary
// and integer widths other than 64 bits.
func keyForValue(arr arrow.Array, i int) (key uint64, ok bool) {
	switch a := arr.(type) {
	case *array.Int64:
		return uint64(a.Value(i)), true
	case *array.Float64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(a.Value(i)))
		return murmur3.Sum64(buf[:]), true
	case *array.Binary:
		return murmur3.Sum64(a.Value(i)), true
	case *array.String:
		return murmur3.Sum64([]byte(a.Value(i))), true
	default:
		return 0, false
	}
}

func unsupportedKeyType(arr arrow.Array) error {
	return fmt.Errorf("unsupported join key column type: %s", arr.DataType())
}
