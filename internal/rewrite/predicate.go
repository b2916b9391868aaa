// Package rewrite implements the predicate-rewrite optimizer of spec §4.3:
// a set of local, semantics-preserving rewrites on filter and projection
// expressions (LIKE -> STARTS_WITH/ENDS_WITH/SEARCH/Eq, IN-singleton -> Eq,
// interval reordering, adjacent-wildcard collapsing).
//
// Ported from
// opteryx/planner/cost_based_optimizer/strategies/predicate_rewriter.py.
// The source visits a logical plan's Filter/Project nodes; this package
// provides only RewritePredicate, the pure per-subtree rewrite, tested in
// isolation. It has no plan visitor: the root package's Session.Rewrite
// applies RewritePredicate to a caller-supplied slice of predicates.
package rewrite

import (
	"regexp"
	"strings"

	"github.com/cascadedb/cascadeql/internal/exprtree"
)

var likeRewrites = map[string]string{"Like": "Eq", "NotLike": "NotEq"}
var inRewrites = map[string]string{"InList": "Eq", "NotInList": "NotEq"}

var adjacentWildcards = regexp.MustCompile(`%+`)

// RewritePredicate applies the rules of spec §4.3, in order, recursing into
// AND/OR/XOR first. It is idempotent (Testable Property 5): none of its
// rewrites re-trigger their own precondition once applied.
func RewritePredicate(n *exprtree.Node) *exprtree.Node {
	if n == nil {
		return nil
	}

	if n.NodeType == exprtree.And || n.NodeType == exprtree.Or || n.NodeType == exprtree.Xor {
		n = n.Clone()
		n.Left = RewritePredicate(n.Left)
		n.Right = RewritePredicate(n.Right)
		return n
	}

	if n.NodeType != exprtree.BinaryOperator && n.NodeType != exprtree.ComparisonOperator {
		return n
	}

	n = n.Clone()

	n = removeAdjacentWildcards(n)
	n = likeWithNoWildcardsToEq(n)
	if rewritten, ok := likeToStartsEndsSearch(n); ok {
		return rewritten
	}
	n = anyOpEqToInList(n)
	if rewritten, ok := inSingletonToEq(n); ok {
		return rewritten
	}
	if rewritten, ok := reorderIntervalCalc(n); ok {
		return rewritten
	}

	return n
}

// removeAdjacentWildcards: "operator in {Like, ILike, NotLike, NotILike}
// and pattern contains '%%' -> collapse all runs of % to a single %".
func removeAdjacentWildcards(n *exprtree.Node) *exprtree.Node {
	if !isLikeFamily(n.Value) || n.Right == nil {
		return n
	}
	pattern := n.Right.Literal.Str
	if !strings.Contains(pattern, "%%") {
		return n
	}
	n.Right = n.Right.Clone()
	n.Right.Literal.Str = adjacentWildcards.ReplaceAllString(pattern, "%")
	return n
}

// likeWithNoWildcardsToEq: "operator in {Like, NotLike} and pattern
// contains neither % nor _ -> rewrite to {Eq, NotEq}".
func likeWithNoWildcardsToEq(n *exprtree.Node) *exprtree.Node {
	if n.Value != "Like" && n.Value != "NotLike" {
		return n
	}
	if n.Right == nil {
		return n
	}
	pattern := n.Right.Literal.Str
	if strings.Contains(pattern, "%") || strings.Contains(pattern, "_") {
		return n
	}
	n.Value = likeRewrites[n.Value]
	return n
}

// likeToStartsEndsSearch: the three FUNCTION rewrites for pushdown-hostile
// connectors with single-% and double-% patterns.
func likeToStartsEndsSearch(n *exprtree.Node) (*exprtree.Node, bool) {
	if n.Value != "Like" && n.Value != "ILike" {
		return n, false
	}
	if n.Left == nil || n.Right == nil {
		return n, false
	}
	if n.Left.SourceConnector == nil || !n.Left.SourceConnector.IsDisjoint(connectorsSqlCql) {
		return n, false
	}
	if n.Right.NodeType != exprtree.Literal {
		return n, false
	}

	pattern := n.Right.Literal.Str
	if pattern == "" {
		return n, false
	}
	ignoreCase := n.Value == "ILike"
	count := strings.Count(pattern, "%")

	switch {
	case pattern[len(pattern)-1] == '%' && count == 1:
		return rewriteToFunction(n, "STARTS_WITH", pattern[:len(pattern)-1], ignoreCase), true
	case pattern[0] == '%' && count == 1:
		return rewriteToFunction(n, "ENDS_WITH", pattern[1:], ignoreCase), true
	case pattern[0] == '%' && pattern[len(pattern)-1] == '%' && count == 2:
		return rewriteToFunction(n, "SEARCH", pattern[1:len(pattern)-1], ignoreCase), true
	default:
		return n, false
	}
}

var connectorsSqlCql = exprtree.ConnectorSet{
	exprtree.ConnectorSql: {},
	exprtree.ConnectorCql: {},
}

func rewriteToFunction(n *exprtree.Node, funcName, strippedPattern string, ignoreCase bool) *exprtree.Node {
	right := n.Right.Clone()
	right.Literal.Str = strippedPattern

	out := &exprtree.Node{
		NodeType: exprtree.Function,
		Value:    funcName,
		Parameters: []*exprtree.Node{
			n.Left,
			right,
			{NodeType: exprtree.Literal, Type: exprtree.TypeBoolean, Literal: exprtree.Value{Kind: exprtree.KindBool, Bool: ignoreCase}},
		},
	}
	return out
}

// anyOpEqToInList: "operator = AnyOpEq and right is LITERAL -> set operator
// = InList".
func anyOpEqToInList(n *exprtree.Node) *exprtree.Node {
	if n.Value != "AnyOpEq" || n.Right == nil || n.Right.NodeType != exprtree.Literal {
		return n
	}
	n.Value = "InList"
	return n
}

// inSingletonToEq: "operator in {InList, NotInList} and right is LITERAL
// with a one-element collection -> pop the single element into
// right.value; set type from sub_type (default VARCHAR); operator -> {Eq,
// NotEq}".
//
// The sub_type-or-VARCHAR default is preserved verbatim from
// rewrite_in_to_eq, including its degenerate case for integer IN-lists with
// an unset sub_type (design note §9, Open Question 3: flagged, not fixed).
func inSingletonToEq(n *exprtree.Node) (*exprtree.Node, bool) {
	_, ok := inRewrites[n.Value]
	if !ok || n.Right == nil || n.Right.NodeType != exprtree.Literal {
		return n, false
	}
	if n.Right.Literal.Len() != 1 {
		return n, false
	}

	right := n.Right.Clone()
	element := right.Literal.List[0]
	right.Literal = element
	if right.SubType != exprtree.TypeUnknown {
		right.Type = right.SubType
	} else {
		right.Type = exprtree.TypeVarchar
	}
	right.SubType = exprtree.TypeUnknown

	n.Value = inRewrites[n.Value]
	n.Right = right
	return n, true
}

// reorderIntervalCalc: "COMPARISON_OPERATOR whose left is BINARY_OPERATOR,
// both left and right resolve to INTERVAL, and left operator = Minus
// (shape `end - start <cmp> interval`) -> reorder to `start + interval
// <cmp> end`".
func reorderIntervalCalc(n *exprtree.Node) (*exprtree.Node, bool) {
	if n.NodeType != exprtree.ComparisonOperator || n.Left == nil {
		return n, false
	}
	if n.Left.NodeType != exprtree.BinaryOperator {
		return n, false
	}
	if determineType(n.Left) != exprtree.TypeInterval || determineType(n.Right) != exprtree.TypeInterval {
		return n, false
	}
	if n.Left.Value != "Minus" {
		return n, false
	}

	dateStart := n.Left.Right
	dateEnd := n.Left.Left
	interval := n.Right

	newBinaryOp := &exprtree.Node{
		NodeType: exprtree.BinaryOperator,
		Value:    "Plus",
		Left:     dateStart,
		Right:    interval,
		Type:     exprtree.TypeTimestamp,
	}

	out := &exprtree.Node{
		NodeType: exprtree.ComparisonOperator,
		Value:    n.Value,
		Left:     newBinaryOp,
		Right:    dateEnd,
		Type:     exprtree.TypeBoolean,
	}
	return out, true
}

// determineType returns the domain type an expression resolves to,
// preferring an already-bound SchemaColumn's type and falling back to the
// node's own Type tag. This is the Go analogue of
// opteryx.planner.binder.operator_map.determine_type, which the rewriter
// imports to classify `end - start` as INTERVAL-typed before reordering.
func determineType(n *exprtree.Node) exprtree.DomainType {
	if n == nil {
		return exprtree.TypeUnknown
	}
	if n.SchemaColumn != nil && n.SchemaColumn.Type != exprtree.TypeUnknown {
		return n.SchemaColumn.Type
	}
	return n.Type
}

func isLikeFamily(operator string) bool {
	switch operator {
	case "Like", "ILike", "NotLike", "NotILike":
		return true
	default:
		return false
	}
}
