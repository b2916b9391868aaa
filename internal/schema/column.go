// Package schema implements the relation-schema and column model of spec
// §3.2: an ordered collection of column descriptors plus a name, with
// columns coming in flat/constant/function/expression variants.
//
// Grounded on orso.schema's RelationSchema/FlatColumn/ConstantColumn/
// FunctionColumn types referenced throughout opteryx's binder.py, and on
// the teacher's sql.Column (a name+type descriptor attached to a table),
// generalized here to carry the binder's identity and derivation metadata.
package schema

import (
	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/mitchellh/hashstructure"
)

// Kind distinguishes the four column variants of spec §3.2.
type Kind int

const (
	KindFlat Kind = iota
	KindConstant
	KindFunction
	KindExpression
)

// FunctionBinding is the callable a FunctionColumn is bound to (spec §3.2).
// It is declared here rather than imported from internal/functions to avoid
// a schema<->functions import cycle: the binder wires the concrete
// *functions.Descriptor in via this narrow interface.
type FunctionBinding interface {
	Name() string
}

// Column is a single column descriptor. Every column has a unique Identity,
// a display Name, an ordered list of Aliases, a DomainType, and -- for
// derived columns -- an Origin list recording source relations (spec §3.2).
type Column struct {
	Kind     Kind
	Identity string
	Name     string
	Aliases  []string
	Type     exprtree.DomainType
	Nullable bool

	// Origin records the source relation(s) a derived column was computed
	// from (spec §3.2 "origin list recording source relations").
	Origin []string

	// Value holds the literal payload for KindConstant columns.
	Value exprtree.Value

	// Expression holds the defining expression for KindExpression columns.
	Expression *exprtree.Node

	// Binding holds the resolved callable for KindFunction columns.
	Binding FunctionBinding
}

// AllNames returns the union of Name and Aliases (spec §3.2 "all_names is
// their union").
func (c *Column) AllNames() []string {
	names := make([]string, 0, len(c.Aliases)+1)
	names = append(names, c.Name)
	names = append(names, c.Aliases...)
	return names
}

// HasName reports whether name equals c.Name or any of c.Aliases.
func (c *Column) HasName(name string) bool {
	for _, n := range c.AllNames() {
		if n == name {
			return true
		}
	}
	return false
}

// AddAlias appends alias to c.Aliases if it is not already present in
// AllNames (binder §4.2.1 step 5: "If the node has an alias not yet in the
// column's all_names, append the alias").
func (c *Column) AddAlias(alias string) {
	if alias == "" || c.HasName(alias) {
		return
	}
	c.Aliases = append(c.Aliases, alias)
}

// structuralShape is the reduced view of a Column that UnionWith's
// shape-dedup pass hashes. Expression/Binding are left out: they embed
// pointers, and a column's identity (not pointer identity) already governs
// the primary dedup path in UnionWith, so including them would make two
// columns that compute the same thing by different expression trees hash as
// distinct for no useful reason.
type structuralShape struct {
	Kind  Kind
	Name  string
	Type  exprtree.DomainType
	Value exprtree.Value
}

// StructuralHash hashes c's shape, used by RelationSchema.UnionWith to fold
// together columns that arrived with distinct identities but are otherwise
// indistinguishable constant/flat columns (spec §4.2.2's union is "by
// identity"; this catches the common case of two independently-derived
// duplicates that identity alone would miss). A hashing error is returned
// to the caller rather than panicking so a pathological column value never
// takes down binding.
func (c *Column) StructuralHash() (uint64, error) {
	return hashstructure.Hash(structuralShape{
		Kind:  c.Kind,
		Name:  c.Name,
		Type:  c.Type,
		Value: c.Value,
	}, nil)
}

// NewFlatColumn constructs a physical (table-backed) column.
func NewFlatColumn(identity, name string, typ exprtree.DomainType) *Column {
	return &Column{Kind: KindFlat, Identity: identity, Name: name, Type: typ}
}

// NewConstantColumn constructs a literal-valued derived column (binder §4.2
// step 6 "LITERAL -> append a constant column to $derived").
func NewConstantColumn(identity, name string, typ exprtree.DomainType, value exprtree.Value, aliases []string) *Column {
	return &Column{Kind: KindConstant, Identity: identity, Name: name, Type: typ, Value: value, Aliases: aliases}
}

// NewFunctionColumn constructs a column bound to a registry callable
// (binder §4.2 step 6, FUNCTION/AGGREGATOR case).
func NewFunctionColumn(identity, name string, binding FunctionBinding, aliases []string) *Column {
	return &Column{Kind: KindFunction, Identity: identity, Name: name, Binding: binding, Aliases: aliases}
}

// NewExpressionColumn constructs a column derived from an arbitrary scalar
// expression (binder §4.2 step 6, the fallthrough case).
func NewExpressionColumn(identity, name string, expr *exprtree.Node, aliases []string) *Column {
	return &Column{Kind: KindExpression, Identity: identity, Name: name, Expression: expr, Aliases: aliases}
}
