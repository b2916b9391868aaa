// Package exprtree implements the expression node model of spec §3.1: a
// recursive tree representing both relational-algebra steps and
// intra-expression computation (comparisons, arithmetic, function calls,
// literals, identifiers, wildcards, subqueries).
//
// The node shape mirrors the teacher's sql/expression package (an
// Expression is a small tree of typed nodes walked with Eval(ctx, row));
// CascadeQL generalizes it to carry the extra binder/optimizer metadata
// spec.md's Binder and Predicate Rewriter require (schema_column,
// identity, source_connector, do_not_create_column, ...) that a plain
// sql.Expression does not need.
package exprtree

import "fmt"

// NodeType enumerates the expression-node kinds of spec §3.1.
type NodeType int

const (
	Identifier NodeType = iota
	Literal
	Wildcard
	Function
	Aggregator
	BinaryOperator
	ComparisonOperator
	And
	Or
	Xor
	ExpressionList
	Subquery
	Evaluated
)

func (t NodeType) String() string {
	switch t {
	case Identifier:
		return "Identifier"
	case Literal:
		return "Literal"
	case Wildcard:
		return "Wildcard"
	case Function:
		return "Function"
	case Aggregator:
		return "Aggregator"
	case BinaryOperator:
		return "BinaryOperator"
	case ComparisonOperator:
		return "ComparisonOperator"
	case And:
		return "And"
	case Or:
		return "Or"
	case Xor:
		return "Xor"
	case ExpressionList:
		return "ExpressionList"
	case Subquery:
		return "Subquery"
	case Evaluated:
		return "Evaluated"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// ValueKind tags the dynamically-typed payload carried by LITERAL nodes and
// session variables (spec §9 "Dynamic values").
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindI64
	KindF64
	KindBytes
	KindString
	KindTimestamp
	KindInterval
	KindList
)

// Value is the tagged-sum dynamic value spec.md §9 calls for in place of the
// source's untyped Python literals.
type Value struct {
	Kind     ValueKind
	Bool     bool
	I64      int64
	F64      float64
	Bytes    []byte
	Str      string
	TimeUnix int64 // nanoseconds since epoch, for KindTimestamp
	Interval IntervalValue
	List     []Value
}

// IntervalValue models a SQL INTERVAL literal (e.g. INTERVAL '7' DAY).
type IntervalValue struct {
	Months  int32
	Days    int32
	Nanos   int64
	Unit    string // the literal unit, e.g. "DAY", retained for display/format
	Literal string // the literal quantity as written, e.g. "7"
}

// Len returns the length of a KindList value, or -1 if the value isn't a
// list. Used by the IN-singleton rewrite (spec §4.3) to test for a
// one-element collection.
func (v Value) Len() int {
	if v.Kind != KindList {
		return -1
	}
	return len(v.List)
}

// DomainType is the domain type tag of spec §3.1 (`type`, `sub_type`).
type DomainType int

const (
	TypeUnknown DomainType = iota
	TypeBoolean
	TypeTimestamp
	TypeInterval
	TypeVarchar
	TypeInteger
	TypeFloat
	TypeBinary
)

func (t DomainType) String() string {
	switch t {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeInterval:
		return "INTERVAL"
	case TypeVarchar:
		return "VARCHAR"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeBinary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}

// ConnectorKind names a source connector able to push predicates down
// natively (spec §4.3's Sql/Cql disjointness precondition).
type ConnectorKind string

const (
	ConnectorSql ConnectorKind = "Sql"
	ConnectorCql ConnectorKind = "Cql"
)

// ConnectorSet is a small set of ConnectorKind, used for the
// source_connector field and its disjointness test.
type ConnectorSet map[ConnectorKind]struct{}

// IsDisjoint reports whether s shares no member with other.
func (s ConnectorSet) IsDisjoint(other ConnectorSet) bool {
	for k := range s {
		if _, ok := other[k]; ok {
			return false
		}
	}
	return true
}

// SchemaColumnRef is the binder's resolved-column handle attached to a node
// once bound (spec §3.1 `schema_column`). It is intentionally a thin
// reference (identity + name + type) rather than an embedded *schema.Column,
// keeping exprtree free of an import cycle with the schema package; the
// binder fills in Identity/Name/Type from the real schema.Column it creates
// or finds.
type SchemaColumnRef struct {
	Identity string
	Name     string
	Type     DomainType
	Origin   []string
}

// Node is the expression-tree node of spec §3.1.
type Node struct {
	NodeType NodeType

	Left   *Node
	Centre *Node
	Right  *Node

	// Parameters holds function arguments / CASE branches, in order.
	Parameters []*Node

	// Value is the opaque per-kind payload: operator/function name for
	// FUNCTION/AGGREGATOR/operators, the literal Value for LITERAL,
	// identifier text for IDENTIFIER, and the ExpressionList's members
	// (ValueList) for EXPRESSION_LIST.
	Value     string
	Literal   Value
	ValueList []*Node

	Type    DomainType
	SubType DomainType

	Alias         string
	Source        string
	SourceColumn  string
	CurrentName   string
	QueryColumn   string

	// SchemaColumn is nil until the binder resolves this node (spec §3.1
	// "absence means unbound").
	SchemaColumn *SchemaColumnRef

	// Identity is the stable content hash of §4.1, empty until computed.
	Identity string

	DoNotCreateColumn bool

	SourceConnector ConnectorSet
}

// IsVariableReference reports whether CurrentName marks a session-variable
// reference (spec §3.1: "current_name[0] == '@' marks a session variable
// reference").
func (n *Node) IsVariableReference() bool {
	return len(n.CurrentName) > 0 && n.CurrentName[0] == '@'
}

// Bound reports whether the binder has already resolved this node.
func (n *Node) Bound() bool {
	return n.SchemaColumn != nil
}

// Clone returns a shallow copy of n suitable for rewriting in place without
// aliasing the original tree's top-level fields. Children are shared, not
// deep-copied: rewrites that replace children construct new child nodes
// rather than mutating shared subtrees.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}
