package rewrite

import (
	"testing"

	"github.com/cascadedb/cascadeql/internal/exprtree"
)

func column(name string) *exprtree.Node {
	return &exprtree.Node{
		NodeType:        exprtree.Identifier,
		SourceColumn:    name,
		CurrentName:     name,
		SourceConnector: exprtree.ConnectorSet{},
	}
}

func str(s string) *exprtree.Node {
	return &exprtree.Node{NodeType: exprtree.Literal, Type: exprtree.TypeVarchar, Literal: exprtree.Value{Kind: exprtree.KindString, Str: s}}
}

func like(left, right *exprtree.Node) *exprtree.Node {
	return &exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "Like", Left: left, Right: right}
}

func TestRewriteLikeNoWildcardsToEq(t *testing.T) {
	n := like(column("x"), str("abc"))
	out := RewritePredicate(n)
	if out.Value != "Eq" {
		t.Fatalf("expected Eq, got %s", out.Value)
	}
	if out.Right.Literal.Str != "abc" {
		t.Fatalf("expected literal unchanged, got %q", out.Right.Literal.Str)
	}
}

func TestRewriteLikeTrailingWildcardToStartsWith(t *testing.T) {
	n := like(column("x"), str("abc%"))
	out := RewritePredicate(n)
	if out.NodeType != exprtree.Function || out.Value != "STARTS_WITH" {
		t.Fatalf("expected STARTS_WITH function, got %s/%s", out.NodeType, out.Value)
	}
	if out.Parameters[1].Literal.Str != "abc" {
		t.Fatalf("expected stripped pattern 'abc', got %q", out.Parameters[1].Literal.Str)
	}
	if out.Parameters[2].Literal.Bool != false {
		t.Fatalf("expected case-sensitive (ignoreCase=false) for LIKE")
	}
}

func TestRewriteLikeLeadingWildcardToEndsWith(t *testing.T) {
	n := like(column("x"), str("%abc"))
	out := RewritePredicate(n)
	if out.NodeType != exprtree.Function || out.Value != "ENDS_WITH" {
		t.Fatalf("expected ENDS_WITH function, got %s/%s", out.NodeType, out.Value)
	}
	if out.Parameters[1].Literal.Str != "abc" {
		t.Fatalf("expected stripped pattern 'abc', got %q", out.Parameters[1].Literal.Str)
	}
}

func TestRewriteILikeBothEndsWildcardToSearch(t *testing.T) {
	n := &exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "ILike", Left: column("x"), Right: str("%abc%")}
	out := RewritePredicate(n)
	if out.NodeType != exprtree.Function || out.Value != "SEARCH" {
		t.Fatalf("expected SEARCH function, got %s/%s", out.NodeType, out.Value)
	}
	if out.Parameters[1].Literal.Str != "abc" {
		t.Fatalf("expected stripped pattern 'abc', got %q", out.Parameters[1].Literal.Str)
	}
	if out.Parameters[2].Literal.Bool != true {
		t.Fatalf("expected ignoreCase=true for ILIKE")
	}
}

func TestRewriteAdjacentWildcardsCollapsed(t *testing.T) {
	n := like(column("x"), str("abc%%%def"))
	out := removeAdjacentWildcards(n.Clone())
	if out.Right.Literal.Str != "abc%def" {
		t.Fatalf("expected collapsed pattern 'abc%%def', got %q", out.Right.Literal.Str)
	}
}

func TestRewriteInSingletonToEq(t *testing.T) {
	right := &exprtree.Node{
		NodeType: exprtree.Literal,
		SubType:  exprtree.TypeVarchar,
		Literal: exprtree.Value{Kind: exprtree.KindList, List: []exprtree.Value{
			{Kind: exprtree.KindString, Str: "a"},
		}},
	}
	n := &exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "InList", Left: column("x"), Right: right}

	out := RewritePredicate(n)
	if out.Value != "Eq" {
		t.Fatalf("expected Eq, got %s", out.Value)
	}
	if out.Right.Literal.Kind != exprtree.KindString || out.Right.Literal.Str != "a" {
		t.Fatalf("expected popped literal 'a', got %+v", out.Right.Literal)
	}
	if out.Right.Type != exprtree.TypeVarchar {
		t.Fatalf("expected right type VARCHAR from sub_type, got %s", out.Right.Type)
	}
}

func TestRewriteInSingletonDefaultsToVarcharWithoutSubType(t *testing.T) {
	right := &exprtree.Node{
		NodeType: exprtree.Literal,
		Literal: exprtree.Value{Kind: exprtree.KindList, List: []exprtree.Value{
			{Kind: exprtree.KindI64, I64: 7},
		}},
	}
	n := &exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "InList", Left: column("x"), Right: right}

	out := RewritePredicate(n)
	if out.Right.Type != exprtree.TypeVarchar {
		t.Fatalf("degenerate sub_type-less IN-list must default to VARCHAR (Open Question 3), got %s", out.Right.Type)
	}
	if out.Right.Literal.I64 != 7 {
		t.Fatalf("expected popped literal 7 preserved despite type mismatch, got %v", out.Right.Literal)
	}
}

func TestRewriteInMultiElementUntouched(t *testing.T) {
	right := &exprtree.Node{
		NodeType: exprtree.Literal,
		Literal: exprtree.Value{Kind: exprtree.KindList, List: []exprtree.Value{
			{Kind: exprtree.KindString, Str: "a"},
			{Kind: exprtree.KindString, Str: "b"},
		}},
	}
	n := &exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "InList", Left: column("x"), Right: right}

	out := RewritePredicate(n)
	if out.Value != "InList" {
		t.Fatalf("multi-element IN must not be rewritten, got %s", out.Value)
	}
}

func TestRewriteAnyOpEqToInList(t *testing.T) {
	right := &exprtree.Node{NodeType: exprtree.Literal, Literal: exprtree.Value{Kind: exprtree.KindList, List: []exprtree.Value{
		{Kind: exprtree.KindString, Str: "a"},
		{Kind: exprtree.KindString, Str: "b"},
	}}}
	n := &exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "AnyOpEq", Left: column("x"), Right: right}

	out := RewritePredicate(n)
	if out.Value != "InList" {
		t.Fatalf("expected AnyOpEq -> InList, got %s", out.Value)
	}
}

func TestRewriteIntervalCalcReordered(t *testing.T) {
	startDate := &exprtree.Node{NodeType: exprtree.Identifier, SourceColumn: "start_date", SchemaColumn: &exprtree.SchemaColumnRef{Type: exprtree.TypeTimestamp}}
	endDate := &exprtree.Node{NodeType: exprtree.Identifier, SourceColumn: "end_date", SchemaColumn: &exprtree.SchemaColumnRef{Type: exprtree.TypeTimestamp}}
	interval := &exprtree.Node{NodeType: exprtree.Literal, Type: exprtree.TypeInterval, Literal: exprtree.Value{Kind: exprtree.KindInterval, Interval: exprtree.IntervalValue{Days: 7, Unit: "DAY", Literal: "7"}}}

	diff := &exprtree.Node{
		NodeType: exprtree.BinaryOperator,
		Value:    "Minus",
		Left:     endDate,
		Right:    startDate,
		Type:     exprtree.TypeInterval,
	}
	n := &exprtree.Node{NodeType: exprtree.ComparisonOperator, Value: "Gt", Left: diff, Right: interval}

	out := RewritePredicate(n)
	if out.NodeType != exprtree.ComparisonOperator || out.Value != "Gt" {
		t.Fatalf("expected comparison preserved, got %s/%s", out.NodeType, out.Value)
	}
	if out.Left.NodeType != exprtree.BinaryOperator || out.Left.Value != "Plus" {
		t.Fatalf("expected left side to become start_date + interval, got %s/%s", out.Left.NodeType, out.Left.Value)
	}
	if out.Left.Left.SourceColumn != "start_date" || out.Left.Right != interval {
		t.Fatalf("expected Plus(start_date, interval), got %+v", out.Left)
	}
	if out.Right.SourceColumn != "end_date" {
		t.Fatalf("expected right operand rewritten to end_date, got right=%+v", out.Right)
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	cases := []*exprtree.Node{
		like(column("x"), str("abc")),
		like(column("x"), str("abc%")),
		&exprtree.Node{NodeType: exprtree.BinaryOperator, Value: "ILike", Left: column("x"), Right: str("%abc%")},
	}
	for i, n := range cases {
		once := RewritePredicate(n)
		twice := RewritePredicate(once)
		if exprtree.Format(once) != exprtree.Format(twice) {
			t.Fatalf("case %d: rewrite not idempotent: once=%s twice=%s", i, exprtree.Format(once), exprtree.Format(twice))
		}
	}
}

func TestRewriteSkipsWhenConnectorPushesDown(t *testing.T) {
	left := column("x")
	left.SourceConnector = exprtree.ConnectorSet{exprtree.ConnectorSql: {}}
	n := like(left, str("abc%"))

	out := RewritePredicate(n)
	if out.Value != "Like" {
		t.Fatalf("expected native-pushdown-capable connector to skip function rewrite, got %s", out.Value)
	}
}

func TestRewriteRecursesIntoAndOr(t *testing.T) {
	left := like(column("x"), str("abc"))
	right := like(column("y"), str("def%"))
	n := &exprtree.Node{NodeType: exprtree.And, Left: left, Right: right}

	out := RewritePredicate(n)
	if out.Left.Value != "Eq" {
		t.Fatalf("expected left branch rewritten to Eq, got %s", out.Left.Value)
	}
	if out.Right.NodeType != exprtree.Function || out.Right.Value != "STARTS_WITH" {
		t.Fatalf("expected right branch rewritten to STARTS_WITH, got %s/%s", out.Right.NodeType, out.Right.Value)
	}
}
