package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/morsel"
	"github.com/cascadedb/cascadeql/internal/variables"
)

func TestSetVariableNodeMutatesStore(t *testing.T) {
	store := variables.NewStore()
	n := &SetVariableNode{
		Variables: store,
		Variable:  "@timezone",
		Value:     exprtree.Value{Kind: exprtree.KindString, Str: "UTC"},
	}

	morsels, err := n.Execute(context.Background(), morsel.EOS)
	require.NoError(t, err)
	require.Empty(t, morsels)

	col, ok := store.AsColumn("@timezone")
	require.True(t, ok, "expected @timezone to be set")
	require.Equal(t, "UTC", col.Value.Str)

	require.Equal(t, NonTabularResult{RecordCount: 1, Status: StatusSuccess}, n.Result)
}

func TestSetVariableNodeIgnoresInput(t *testing.T) {
	store := variables.NewStore()
	n := &SetVariableNode{
		Variables: store,
		Variable:  "@max_rows",
		Value:     exprtree.Value{Kind: exprtree.KindI64, I64: 100},
	}

	_, err := n.Execute(context.Background(), morsel.Morsel{})
	require.NoError(t, err)

	col, ok := store.AsColumn("@max_rows")
	require.True(t, ok)
	require.Equal(t, int64(100), col.Value.I64)
}
