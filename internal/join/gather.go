package join

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// concatLeftBuffer concatenates the buffered left-side morsels into a single
// relation, the Go analogue of pyarrow.concat_tables(self.left_buffer,
// promote_options="none") in InnerJoinSingleNode.execute: "none" means no
// schema reconciliation is attempted, so every buffered record is required to
// already share the first one's schema (Testable Property 7 holds for any
// well-formed upstream operator).
func concatLeftBuffer(mem memory.Allocator, recs []arrow.Record) (arrow.Record, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("cannot build a left relation from zero morsels")
	}
	if len(recs) == 1 {
		recs[0].Retain()
		return recs[0], nil
	}

	schema := recs[0].Schema()
	cols := make([]arrow.Array, schema.NumFields())
	var totalRows int64
	for _, r := range recs {
		totalRows += r.NumRows()
	}

	for fieldIdx := 0; fieldIdx < schema.NumFields(); fieldIdx++ {
		parts := make([]arrow.Array, len(recs))
		for i, r := range recs {
			parts[i] = r.Column(fieldIdx)
		}
		combined, err := array.Concatenate(parts, mem)
		if err != nil {
			return nil, fmt.Errorf("concatenating left buffer column %q: %w", schema.Field(fieldIdx).Name, err)
		}
		cols[fieldIdx] = combined
	}

	return array.NewRecord(schema, cols, totalRows), nil
}

// takeColumns gathers rows from rec by row index, the Go analogue of
// pyarrow.Table.take. It covers exactly the physical types internal/scan's
// domainTypeToArrow ever produces (Boolean, Int64, Float64, Timestamp_ns,
// Binary, String); anything else is an internal-consistency error since it
// cannot legitimately reach the join operator.
func takeColumns(rec arrow.Record, indexes []int32, mem memory.Allocator) (arrow.Record, error) {
	schema := rec.Schema()
	cols := make([]arrow.Array, schema.NumFields())
	for fieldIdx := 0; fieldIdx < schema.NumFields(); fieldIdx++ {
		taken, err := takeColumn(rec.Column(fieldIdx), indexes, mem)
		if err != nil {
			return nil, fmt.Errorf("gathering column %q: %w", schema.Field(fieldIdx).Name, err)
		}
		cols[fieldIdx] = taken
	}
	return array.NewRecord(schema, cols, int64(len(indexes))), nil
}

func takeColumn(col arrow.Array, indexes []int32, mem memory.Allocator) (arrow.Array, error) {
	switch a := col.(type) {
	case *array.Boolean:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for _, idx := range indexes {
			appendBool(b, a, idx)
		}
		return b.NewArray(), nil
	case *array.Int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for _, idx := range indexes {
			appendInt64(b, a, idx)
		}
		return b.NewArray(), nil
	case *array.Float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, idx := range indexes {
			appendFloat64(b, a, idx)
		}
		return b.NewArray(), nil
	case *array.TimestampArray:
		b := array.NewTimestampBuilder(mem, a.DataType().(*arrow.TimestampType))
		defer b.Release()
		for _, idx := range indexes {
			if a.IsNull(int(idx)) {
				b.AppendNull()
				continue
			}
			b.Append(a.Value(int(idx)))
		}
		return b.NewArray(), nil
	case *array.Binary:
		b := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
		defer b.Release()
		for _, idx := range indexes {
			if a.IsNull(int(idx)) {
				b.AppendNull()
				continue
			}
			b.Append(a.Value(int(idx)))
		}
		return b.NewArray(), nil
	case *array.String:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for _, idx := range indexes {
			if a.IsNull(int(idx)) {
				b.AppendNull()
				continue
			}
			b.Append(a.Value(int(idx)))
		}
		return b.NewArray(), nil
	default:
		return nil, fmt.Errorf("unsupported column type for gather: %s", col.DataType())
	}
}

func appendBool(b *array.BooleanBuilder, a *array.Boolean, idx int32) {
	if a.IsNull(int(idx)) {
		b.AppendNull()
		return
	}
	b.Append(a.Value(int(idx)))
}

func appendInt64(b *array.Int64Builder, a *array.Int64, idx int32) {
	if a.IsNull(int(idx)) {
		b.AppendNull()
		return
	}
	b.Append(a.Value(int(idx)))
}

func appendFloat64(b *array.Float64Builder, a *array.Float64, idx int32) {
	if a.IsNull(int(idx)) {
		b.AppendNull()
		return
	}
	b.Append(a.Value(int(idx)))
}

// alignTables is the Go analogue of opteryx.utils.arrow.align_tables, which
// inner_join_with_preprocessed_left_side calls as
// align_tables(right_relation, left_relation, right_indexes, left_indexes):
// the output carries the probe (right) side's columns first, followed by the
// build (left) side's, each gathered by its matching index list.
func alignTables(mem memory.Allocator, rightRelation arrow.Record, leftRelation arrow.Record, rightIndexes, leftIndexes []int32) (arrow.Record, error) {
	rightGathered, err := takeColumns(rightRelation, rightIndexes, mem)
	if err != nil {
		return nil, err
	}
	leftGathered, err := takeColumns(leftRelation, leftIndexes, mem)
	if err != nil {
		return nil, err
	}

	fields := append(append([]arrow.Field{}, rightGathered.Schema().Fields()...), leftGathered.Schema().Fields()...)
	cols := append(append([]arrow.Array{}, columnsOf(rightGathered)...), columnsOf(leftGathered)...)

	return array.NewRecord(arrow.NewSchema(fields, nil), cols, int64(len(rightIndexes))), nil
}

func columnsOf(rec arrow.Record) []arrow.Array {
	cols := make([]arrow.Array, rec.NumCols())
	for i := range cols {
		cols[i] = rec.Column(i)
	}
	return cols
}
