package binder

import (
	"testing"

	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/functions"
	"github.com/cascadedb/cascadeql/internal/schema"
	"github.com/cascadedb/cascadeql/internal/variables"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	fns := functions.NewRegistry()
	functions.RegisterNumberFunctions(fns)
	functions.RegisterStringFunctions(fns)

	ctx := NewContext(&Connection{Variables: variables.NewStore()}, fns)

	users := schema.NewRelationSchema("users")
	users.Append(schema.NewFlatColumn("col-id", "id", exprtree.TypeInteger))
	users.Append(schema.NewFlatColumn("col-name", "name", exprtree.TypeVarchar))
	ctx.Schemas["users"] = users

	return ctx
}

func identNode(sourceColumn string) *exprtree.Node {
	return &exprtree.Node{NodeType: exprtree.Identifier, SourceColumn: sourceColumn, CurrentName: sourceColumn}
}

func TestBindIdentifierResolves(t *testing.T) {
	ctx := newTestContext(t)
	node := identNode("id")

	bound, _, err := Bind(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bound.Bound() {
		t.Fatalf("expected node to be bound")
	}
	if bound.SchemaColumn.Name != "id" {
		t.Fatalf("expected bound column id, got %s", bound.SchemaColumn.Name)
	}
}

func TestBindIdempotent(t *testing.T) {
	ctx := newTestContext(t)
	node := identNode("id")

	first, ctx1, err := Bind(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, _, err := Bind(first, ctx1)
	if err != nil {
		t.Fatalf("unexpected error on re-bind: %v", err)
	}
	if second.SchemaColumn.Identity != first.SchemaColumn.Identity {
		t.Fatalf("re-binding an already-bound node must be a no-op (Testable Property 1)")
	}
}

func TestBindUnknownColumnSuggestsAlternative(t *testing.T) {
	ctx := newTestContext(t)
	node := identNode("nmae") // typo of "name"

	_, _, err := Bind(node, ctx)
	if err == nil {
		t.Fatalf("expected ColumnNotFoundError")
	}
}

func TestBindAmbiguousIdentifier(t *testing.T) {
	ctx := newTestContext(t)
	other := schema.NewRelationSchema("accounts")
	other.Append(schema.NewFlatColumn("col-id2", "id", exprtree.TypeInteger))
	ctx.Schemas["accounts"] = other

	node := identNode("id")
	_, _, err := Bind(node, ctx)
	if err == nil {
		t.Fatalf("expected AmbiguousIdentifierError")
	}
}

func TestBindUnexpectedDatasetReference(t *testing.T) {
	ctx := newTestContext(t)
	node := &exprtree.Node{NodeType: exprtree.Identifier, Source: "nope", SourceColumn: "id", CurrentName: "id"}
	_, _, err := Bind(node, ctx)
	if err == nil {
		t.Fatalf("expected UnexpectedDatasetReferenceError")
	}
}

func TestBindFunctionNotFound(t *testing.T) {
	ctx := newTestContext(t)
	node := &exprtree.Node{NodeType: exprtree.Function, Value: "NOT_A_REAL_FUNCTION", Parameters: []*exprtree.Node{identNode("id")}}
	_, _, err := Bind(node, ctx)
	if err == nil {
		t.Fatalf("expected FunctionNotFoundError")
	}
}

func TestBindFunctionResolves(t *testing.T) {
	ctx := newTestContext(t)
	node := &exprtree.Node{NodeType: exprtree.Function, Value: "ROUND", Parameters: []*exprtree.Node{identNode("id")}}
	bound, _, err := Bind(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bound.Bound() {
		t.Fatalf("expected function node to be bound")
	}
}

func TestBindDerivedColumnReusedAcrossOccurrences(t *testing.T) {
	ctx := newTestContext(t)

	expr := func() *exprtree.Node {
		return &exprtree.Node{
			NodeType: exprtree.BinaryOperator,
			Value:    "Plus",
			Left:     identNode("id"),
			Right:    &exprtree.Node{NodeType: exprtree.Literal, Literal: exprtree.Value{Kind: exprtree.KindI64, I64: 1}},
		}
	}

	first, ctx1, err := Bind(expr(), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, ctx2, err := Bind(expr(), ctx1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.SchemaColumn.Identity != second.SchemaColumn.Identity {
		t.Fatalf("binding the same sub-expression twice must yield a single $derived entry (Testable Property 3)")
	}

	derived := ctx2.Schemas[schema.DerivedRelationName]
	count := 0
	for _, c := range derived.Columns {
		if c.Identity == first.SchemaColumn.Identity {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one $derived entry for the repeated expression, found %d", count)
	}
}

func TestBindVariableReference(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Connection.Variables.Set("myvar", exprtree.Value{Kind: exprtree.KindI64, I64: 42})

	node := &exprtree.Node{NodeType: exprtree.Identifier, Value: "myvar", SourceColumn: "myvar", CurrentName: "@myvar"}
	bound, _, err := Bind(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound.NodeType != exprtree.Literal {
		t.Fatalf("expected variable reference to rewrite to a LITERAL node")
	}
	if bound.Literal.I64 != 42 {
		t.Fatalf("expected variable value 42, got %v", bound.Literal)
	}
}

func TestBindVariableReferenceCoercesToExpectedType(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Connection.Variables.Set("limit", exprtree.Value{Kind: exprtree.KindString, Str: "10"})

	node := &exprtree.Node{
		NodeType:     exprtree.Identifier,
		Value:        "limit",
		SourceColumn: "limit",
		CurrentName:  "@limit",
		Type:         exprtree.TypeInteger,
	}
	bound, _, err := Bind(node, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound.Literal.Kind != exprtree.KindI64 || bound.Literal.I64 != 10 {
		t.Fatalf("expected the string variable to be coerced to integer 10, got %+v", bound.Literal)
	}
}

func TestBindUnknownVariableIsColumnNotFound(t *testing.T) {
	ctx := newTestContext(t)
	node := &exprtree.Node{NodeType: exprtree.Identifier, Value: "nope", SourceColumn: "nope", CurrentName: "@nope"}
	_, _, err := Bind(node, ctx)
	if err == nil {
		t.Fatalf("expected ColumnNotFoundError for unknown variable")
	}
}
