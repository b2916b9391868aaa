package exprtree

import (
	"fmt"
	"strings"
)

// Format renders a node to its canonical textual form, the Go analogue of
// opteryx's format_expression. It is used two ways downstream: as the
// candidate derived-column name when a node has no alias (binder §4.2 step
// 4: "node.query_column or format(node)"), and as the outer-hash input of
// the identity algorithm (§4.1: "hash(format(node))").
//
// Two nodes that differ only in alias placement format identically, which
// is exactly the property Testable Property 2 (identity stability) relies
// on.
func Format(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.NodeType {
	case Literal:
		return formatLiteral(n.Literal)
	case Identifier:
		if n.Source != "" {
			return n.Source + "." + n.SourceColumn
		}
		return n.SourceColumn
	case Wildcard:
		if n.Source != "" {
			return n.Source + ".*"
		}
		return "*"
	case Function, Aggregator:
		parts := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			parts[i] = Format(p)
		}
		return fmt.Sprintf("%s(%s)", n.Value, strings.Join(parts, ", "))
	case BinaryOperator, ComparisonOperator:
		return fmt.Sprintf("%s %s %s", Format(n.Left), operatorSymbol(n.Value), Format(n.Right))
	case And:
		return fmt.Sprintf("%s AND %s", Format(n.Left), Format(n.Right))
	case Or:
		return fmt.Sprintf("%s OR %s", Format(n.Left), Format(n.Right))
	case Xor:
		return fmt.Sprintf("%s XOR %s", Format(n.Left), Format(n.Right))
	case ExpressionList:
		parts := make([]string, len(n.ValueList))
		for i, p := range n.ValueList {
			parts[i] = Format(p)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Subquery:
		return "(SUBQUERY)"
	case Evaluated:
		if n.QueryColumn != "" {
			return n.QueryColumn
		}
		return n.Value
	default:
		return n.Value
	}
}

func formatLiteral(v Value) string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindI64:
		return fmt.Sprintf("%d", v.I64)
	case KindF64:
		return fmt.Sprintf("%v", v.F64)
	case KindString:
		return "'" + v.Str + "'"
	case KindBytes:
		return fmt.Sprintf("x'%x'", v.Bytes)
	case KindTimestamp:
		return fmt.Sprintf("TIMESTAMP(%d)", v.TimeUnix)
	case KindInterval:
		return fmt.Sprintf("INTERVAL '%s' %s", v.Interval.Literal, v.Interval.Unit)
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = formatLiteral(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return ""
	}
}

// operatorSymbol maps the operator names carried in Node.Value (e.g. "Plus",
// "Eq") to their infix symbol, the same name set the predicate rewriter
// dispatches on (spec §4.3).
func operatorSymbol(name string) string {
	switch name {
	case "Plus":
		return "+"
	case "Minus":
		return "-"
	case "Mul":
		return "*"
	case "Div":
		return "/"
	case "Eq":
		return "="
	case "NotEq":
		return "!="
	case "Gt":
		return ">"
	case "GtEq":
		return ">="
	case "Lt":
		return "<"
	case "LtEq":
		return "<="
	case "Like":
		return "LIKE"
	case "ILike":
		return "ILIKE"
	case "NotLike":
		return "NOT LIKE"
	case "NotILike":
		return "NOT ILIKE"
	case "InList":
		return "IN"
	case "NotInList":
		return "NOT IN"
	case "AnyOpEq":
		return "= ANY"
	default:
		return name
	}
}
