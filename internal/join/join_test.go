package join

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/cascadedb/cascadeql/internal/exec"
	"github.com/cascadedb/cascadeql/internal/morsel"
)

func intRecord(mem memory.Allocator, idName, otherName string, ids []int64, idValid []bool, other []int64) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: idName, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: otherName, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	idB := array.NewInt64Builder(mem)
	defer idB.Release()
	otherB := array.NewInt64Builder(mem)
	defer otherB.Release()
	for i := range ids {
		if idValid != nil && !idValid[i] {
			idB.AppendNull()
		} else {
			idB.Append(ids[i])
		}
		otherB.Append(other[i])
	}
	return array.NewRecord(schema, []arrow.Array{idB.NewArray(), otherB.NewArray()}, int64(len(ids)))
}

func stringRecord(mem memory.Allocator, keyName, otherName string, keys []string, other []int64) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: keyName, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: otherName, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	keyB := array.NewStringBuilder(mem)
	defer keyB.Release()
	otherB := array.NewInt64Builder(mem)
	defer otherB.Release()
	for i := range keys {
		keyB.Append(keys[i])
		otherB.Append(other[i])
	}
	return array.NewRecord(schema, []arrow.Array{keyB.NewArray(), otherB.NewArray()}, int64(len(keys)))
}

func driveJoin(t *testing.T, n *InnerJoinSingleNode, left, right []arrow.Record) []morsel.Morsel {
	t.Helper()
	ctx := context.Background()

	for _, rec := range left {
		_, err := n.ExecuteStream(ctx, exec.StreamLeft, morsel.New(rec))
		require.NoError(t, err, "left morsel")
	}
	_, err := n.ExecuteStream(ctx, exec.StreamLeft, morsel.EOS)
	require.NoError(t, err, "left EOS")

	var out []morsel.Morsel
	for _, rec := range right {
		results, err := n.ExecuteStream(ctx, exec.StreamRight, morsel.New(rec))
		require.NoError(t, err, "right morsel")
		out = append(out, results...)
	}
	results, err := n.ExecuteStream(ctx, exec.StreamRight, morsel.EOS)
	require.NoError(t, err, "right EOS")
	out = append(out, results...)
	return out
}

func totalRows(out []morsel.Morsel) int64 {
	var n int64
	for _, m := range out {
		if !m.IsEOS() {
			n += m.NumRows()
		}
	}
	return n
}

func TestInnerJoinIntegerKeys(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := intRecord(mem, "id", "name_code", []int64{1, 2, 3}, nil, []int64{10, 20, 30})
	right := intRecord(mem, "id", "amount", []int64{2, 3, 4}, nil, []int64{200, 300, 400})

	n := &InnerJoinSingleNode{
		LeftColumns:  []string{"id"},
		RightColumns: []string{"id"},
		Allocator:    mem,
	}
	out := driveJoin(t, n, []arrow.Record{left}, []arrow.Record{right})

	require.Equal(t, int64(2), totalRows(out), "expected 2 matching rows (ids 2 and 3)")
	require.True(t, out[len(out)-1].IsEOS(), "expected the final morsel to be EOS")
}

func TestInnerJoinExcludesNullKeys(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := intRecord(mem, "id", "name_code", []int64{1, 2, 3}, []bool{true, false, true}, []int64{10, 20, 30})
	right := intRecord(mem, "id", "amount", []int64{1, 2, 3}, []bool{true, false, true}, []int64{100, 200, 300})

	n := &InnerJoinSingleNode{
		LeftColumns:  []string{"id"},
		RightColumns: []string{"id"},
		Allocator:    mem,
	}
	out := driveJoin(t, n, []arrow.Record{left}, []arrow.Record{right})

	require.Equal(t, int64(2), totalRows(out), "expected null join keys to be excluded on both sides")
}

func TestInnerJoinStringKeys(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := stringRecord(mem, "code", "label", []string{"a", "b", "c"}, []int64{1, 2, 3})
	right := stringRecord(mem, "code", "qty", []string{"b", "c", "d"}, []int64{20, 30, 40})

	n := &InnerJoinSingleNode{
		LeftColumns:  []string{"code"},
		RightColumns: []string{"code"},
		Allocator:    mem,
	}
	out := driveJoin(t, n, []arrow.Record{left}, []arrow.Record{right})

	require.Equal(t, int64(2), totalRows(out), "expected 2 matching rows (b and c)")
}

func TestInnerJoinSwapsKeyColumnsOnMismatch(t *testing.T) {
	mem := memory.NewGoAllocator()
	// The left relation's join column is actually named "right_id" --
	// LeftColumns/RightColumns are swapped at construction, forcing the
	// "#1295" swap-on-mismatch path to trigger.
	left := intRecord(mem, "right_id", "name_code", []int64{1, 2}, nil, []int64{10, 20})
	right := intRecord(mem, "left_id", "amount", []int64{1, 2}, nil, []int64{100, 200})

	n := &InnerJoinSingleNode{
		LeftColumns:  []string{"left_id"},
		RightColumns: []string{"right_id"},
		Allocator:    mem,
	}
	out := driveJoin(t, n, []arrow.Record{left}, []arrow.Record{right})

	require.Equal(t, int64(2), totalRows(out), "expected the swap to recover both matches")
}

func TestInnerJoinBuffersMultipleLeftMorsels(t *testing.T) {
	mem := memory.NewGoAllocator()
	left1 := intRecord(mem, "id", "name_code", []int64{1, 2}, nil, []int64{10, 20})
	left2 := intRecord(mem, "id", "name_code", []int64{3, 4}, nil, []int64{30, 40})
	right := intRecord(mem, "id", "amount", []int64{2, 3}, nil, []int64{200, 300})

	n := &InnerJoinSingleNode{
		LeftColumns:  []string{"id"},
		RightColumns: []string{"id"},
		Allocator:    mem,
	}
	out := driveJoin(t, n, []arrow.Record{left1, left2}, []arrow.Record{right})

	require.Equal(t, int64(2), totalRows(out), "expected the left buffer to be concatenated across morsels before probing")
}

func TestInnerJoinNoOutputDuringLeftPhase(t *testing.T) {
	mem := memory.NewGoAllocator()
	left := intRecord(mem, "id", "name_code", []int64{1}, nil, []int64{10})

	n := &InnerJoinSingleNode{
		LeftColumns:  []string{"id"},
		RightColumns: []string{"id"},
		Allocator:    mem,
	}

	results, err := n.ExecuteStream(context.Background(), exec.StreamLeft, morsel.New(left))
	require.NoError(t, err)
	require.Empty(t, results, "expected no output while buffering the left side")

	results, err = n.ExecuteStream(context.Background(), exec.StreamLeft, morsel.EOS)
	require.NoError(t, err, "left EOS")
	require.Empty(t, results, "expected no output on left EOS (the join hasn't probed anything yet)")
}
