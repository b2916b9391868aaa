package binder

import (
	"github.com/cascadedb/cascadeql/internal/errors"
	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/schema"
	"github.com/cascadedb/cascadeql/internal/suggest"
)

// locateIdentifierInSchemas implements binder §4.2.1 step 3: scan candidate
// schemas; a column is found if its name or alias equals sourceColumn. More
// than one match across schemas is ambiguous.
func locateIdentifierInSchemas(sourceColumn string, candidates schema.Environment) (*schema.Column, *schema.RelationSchema, error) {
	var column *schema.Column
	var foundIn *schema.RelationSchema

	for _, s := range candidates {
		found := s.FindColumn(sourceColumn)
		if found == nil {
			continue
		}
		if column != nil && foundIn != nil {
			return nil, nil, errors.AmbiguousIdentifier(sourceColumn)
		}
		column = found
		foundIn = s
	}
	return column, foundIn, nil
}

// locateIdentifier implements binder §4.2.1 in full.
func locateIdentifier(node *exprtree.Node, ctx *Context) (*exprtree.Node, *Context, error) {
	candidates := ctx.Schemas.CandidateSchemas(node.Source)
	if len(candidates) == 0 {
		return nil, nil, errors.UnexpectedDatasetReference(node.Source)
	}

	column, foundIn, err := locateIdentifierInSchemas(node.SourceColumn, candidates)
	if err != nil {
		return nil, nil, err
	}

	if column == nil {
		if node.IsVariableReference() {
			return bindVariableReference(node, ctx)
		}

		var allNames []string
		for _, s := range candidates {
			for _, name := range s.AllColumnNames() {
				if name != "" {
					allNames = append(allNames, name)
				}
			}
		}
		return nil, nil, errors.ColumnNotFound(node.SourceColumn, suggest.Nearest(node.SourceColumn, allNames))
	}

	if node.IsVariableReference() {
		newNode := &exprtree.Node{
			NodeType:     exprtree.Literal,
			SchemaColumn: columnRef(column),
			Type:         column.Type,
			Literal:      column.Value,
		}
		return newNode, ctx, nil
	}

	bound := node.Clone()
	if bound.Source == "" {
		bound.Source = foundIn.Name
	}
	if bound.Alias != "" {
		column.AddAlias(bound.Alias)
	}
	bound.SchemaColumn = columnRef(column)
	if len(column.Origin) == 1 {
		bound.Source = column.Origin[0]
	}
	return bound, ctx, nil
}

// bindVariableReference implements the "current_name starts with '@'"
// not-found branch: fetch the variable as a constant column, append it to
// $derived, and return a rewritten LITERAL node (binder §4.2.1 step 4).
func bindVariableReference(node *exprtree.Node, ctx *Context) (*exprtree.Node, *Context, error) {
	column, ok := ctx.Connection.Variables.AsColumn(node.Value)
	if !ok {
		return nil, nil, errors.ColumnNotFound(node.Value, "")
	}

	literal := column.Value
	literalType := column.Type
	// A variable's stored type doesn't always match the type its use site
	// expects (e.g. `SET @limit = '10'` referenced where an integer is
	// required); coerce rather than fail the bind over it.
	if node.Type != exprtree.TypeUnknown {
		if coerced, changed := coerceTo(literal, node.Type); changed {
			literal = coerced
			literalType = node.Type
		}
	}

	newCtx := ctx.Clone()
	newCtx.Schemas[schema.DerivedRelationName].Append(column)

	newNode := &exprtree.Node{
		NodeType:     exprtree.Literal,
		SchemaColumn: columnRef(column),
		Type:         literalType,
		Literal:      literal,
	}
	return newNode, newCtx, nil
}

func columnRef(c *schema.Column) *exprtree.SchemaColumnRef {
	return &exprtree.SchemaColumnRef{
		Identity: c.Identity,
		Name:     c.Name,
		Type:     c.Type,
		Origin:   c.Origin,
	}
}
