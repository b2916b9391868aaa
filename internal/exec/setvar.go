package exec

import (
	"context"

	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/morsel"
	"github.com/cascadedb/cascadeql/internal/variables"
)

// NonTabularResult is a non-tabular operator's success record (spec §6
// "Variable store": "SetVariable(name, value) ... returns a non-tabular
// success record"), ported from opteryx.models.NonTabularResult.
type NonTabularResult struct {
	RecordCount int64
	Status      string
}

const StatusSuccess = "SQL_SUCCESS"

// SetVariableNode is the supplemented operator ported from
// set_variable_node.py: a single-shot, non-tabular operator that mutates
// the session variable store. It produces no morsels -- its Execute
// result is conveyed through Result, not the Operator interface's morsel
// slice (spec §5: "session variables ... may be mutated by a distinct
// SetVariable operator, one entry per statement").
type SetVariableNode struct {
	Variables *variables.Store
	Variable  string
	Value     exprtree.Value

	Result NonTabularResult
}

// Execute sets the variable and records a NonTabularResult in n.Result.
// Called once per statement; any morsel passed in (including EOS) is
// ignored, matching the source's execute(morsel) that never reads its
// argument.
func (n *SetVariableNode) Execute(ctx context.Context, in morsel.Morsel) ([]morsel.Morsel, error) {
	n.Variables.Set(n.Variable, n.Value)
	n.Result = NonTabularResult{RecordCount: 1, Status: StatusSuccess}
	return nil, nil
}
