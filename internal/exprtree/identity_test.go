package exprtree

import "testing"

func TestIdentityDeterministic(t *testing.T) {
	n := &Node{
		NodeType: BinaryOperator,
		Value:    "Plus",
		Left:     &Node{NodeType: Identifier, Source: "t", SourceColumn: "a"},
		Right:    &Node{NodeType: Literal, Literal: Value{Kind: KindI64, I64: 1}},
	}

	first := Identity(n)
	second := Identity(n)
	if first != second {
		t.Fatalf("identity not deterministic: %s != %s", first, second)
	}
	if first == "" || first == "0" {
		t.Fatalf("identity must be a stable non-zero hash, got %q", first)
	}
}

func TestIdentityStableAcrossAliasPlacement(t *testing.T) {
	base := func(alias string) *Node {
		return &Node{
			NodeType: BinaryOperator,
			Value:    "Plus",
			Alias:    alias,
			Left:     &Node{NodeType: Identifier, Source: "t", SourceColumn: "a"},
			Right:    &Node{NodeType: Literal, Literal: Value{Kind: KindI64, I64: 1}},
		}
	}

	noAlias := base("")
	withAlias := base("total")

	// format_expression ignores alias placement (it renders the expression
	// shape, not the display name), so two trees differing only in alias
	// must collapse to the same identity -- this is Testable Property 2.
	if Identity(noAlias) != Identity(withAlias) {
		t.Fatalf("identity must match for expressions differing only in alias")
	}
}

func TestIdentityDiffersForDifferentOperators(t *testing.T) {
	left := &Node{NodeType: Identifier, Source: "t", SourceColumn: "a"}
	right := &Node{NodeType: Literal, Literal: Value{Kind: KindI64, I64: 1}}

	plus := &Node{NodeType: BinaryOperator, Value: "Plus", Left: left, Right: right}
	minus := &Node{NodeType: BinaryOperator, Value: "Minus", Left: left, Right: right}

	if Identity(plus) == Identity(minus) {
		t.Fatalf("structurally identical trees with different operators must disambiguate via format()")
	}
}

func TestIdentityWildcardFallback(t *testing.T) {
	n := &Node{NodeType: Wildcard, Source: "t"}
	id := Identity(n)
	if id == "" || id == "0" {
		t.Fatalf("wildcard identity must be non-zero, got %q", id)
	}
}
