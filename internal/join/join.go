package join

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/cascadedb/cascadeql/internal/exec"
	"github.com/cascadedb/cascadeql/internal/morsel"
)

// InnerJoinSingleNode is the single-key hash inner join operator of spec
// §4.6, ported from InnerJoinSingleNode in inner_join_node_single.py: buffer
// the left side to EOS, build a hash table over its join column, then probe
// it with each right-side morsel in turn.
//
// It implements exec.MultiInputOperator rather than carrying its own
// left/right phase flag: the stream argument ExecuteStream receives already
// tells it which edge a morsel arrived on, and exec.RunMultiInput guarantees
// the left edge (including its EOS) is fully drained before any right-edge
// morsel is fed in -- exactly the sequencing the source's single self.stream
// field exists to track.
type InnerJoinSingleNode struct {
	// LeftColumns/RightColumns each hold the single join column's identity,
	// one name per side (spec §4.6 names this a "single-key" join).
	LeftColumns  []string
	RightColumns []string

	Allocator memory.Allocator

	leftBuffer   []arrow.Record
	leftRelation arrow.Record
	leftHash     *HashTable
	leftColIndex int
}

// ExecuteStream implements exec.MultiInputOperator.
func (n *InnerJoinSingleNode) ExecuteStream(ctx context.Context, stream exec.Stream, in morsel.Morsel) ([]morsel.Morsel, error) {
	if stream == exec.StreamLeft {
		return n.executeLeft(in)
	}
	return n.executeRight(in)
}

func (n *InnerJoinSingleNode) executeLeft(in morsel.Morsel) ([]morsel.Morsel, error) {
	if !in.IsEOS() {
		in.Retain()
		n.leftBuffer = append(n.leftBuffer, in.Record)
		return nil, nil
	}

	leftRelation, err := concatLeftBuffer(n.Allocator, n.leftBuffer)
	if err != nil {
		return nil, err
	}
	n.leftBuffer = nil
	n.leftRelation = leftRelation

	// in place until the upstream binder always resolves join columns to
	// the side that actually produced them (mirrors the "in place until
	// #1295 resolved" swap in the source).
	leftColumns, rightColumns := n.LeftColumns, n.RightColumns
	if idx := leftRelation.Schema().FieldIndices(leftColumns[0]); len(idx) == 0 {
		leftColumns, rightColumns = rightColumns, leftColumns
		n.LeftColumns, n.RightColumns = leftColumns, rightColumns
	}

	idx := leftRelation.Schema().FieldIndices(leftColumns[0])
	if len(idx) == 0 {
		return nil, fmt.Errorf("join column %q not found on either side of the join", leftColumns[0])
	}
	n.leftColIndex = idx[0]

	ht, err := preprocessLeft(n.leftRelation, n.leftColIndex)
	if err != nil {
		return nil, err
	}
	n.leftHash = ht

	return nil, nil
}

func (n *InnerJoinSingleNode) executeRight(in morsel.Morsel) ([]morsel.Morsel, error) {
	if in.IsEOS() {
		if n.leftRelation != nil {
			n.leftRelation.Release()
			n.leftRelation = nil
		}
		return []morsel.Morsel{morsel.EOS}, nil
	}

	idx := in.Schema().FieldIndices(n.RightColumns[0])
	if len(idx) == 0 {
		return nil, fmt.Errorf("join column %q not found on the probe side of the join", n.RightColumns[0])
	}

	leftIndexes, rightIndexes := probe(in.Column(idx[0]), n.leftHash)
	if len(leftIndexes) == 0 {
		return nil, nil
	}

	rec, err := alignTables(n.Allocator, in.Record, n.leftRelation, rightIndexes, leftIndexes)
	if err != nil {
		return nil, err
	}
	return []morsel.Morsel{morsel.New(rec)}, nil
}
