package binder

import (
	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/schema"
)

// Bind implements binder §4.2's seven-step algorithm: post-order traversal
// with memoization-by-name. The binder is the only component permitted to
// mutate $derived -- here expressed as: only Bind ever appends to
// ctx.Schemas[schema.DerivedRelationName].
func Bind(node *exprtree.Node, ctx *Context) (*exprtree.Node, *Context, error) {
	// Step 1: already bound (idempotence, Testable Property 1).
	if node.Bound() {
		return node, ctx, nil
	}

	// Step 2: identifier or pre-evaluated.
	if node.NodeType == exprtree.Identifier || node.NodeType == exprtree.Evaluated {
		return locateIdentifier(node, ctx)
	}

	// Step 3: expression list.
	if node.NodeType == exprtree.ExpressionList {
		bound := node.Clone()
		newList := make([]*exprtree.Node, len(node.ValueList))
		envs := make([]schema.Environment, 0, len(node.ValueList))
		for i, item := range node.ValueList {
			b, c, err := Bind(item, ctx)
			if err != nil {
				return nil, nil, err
			}
			newList[i] = b
			envs = append(envs, c.Schemas)
		}
		merged, err := schema.MergeSchemas(envs...)
		if err != nil {
			return nil, nil, err
		}
		bound.ValueList = newList
		ctx = ctx.Clone()
		ctx.Schemas = merged
		node = bound
	}

	// Step 4: cached derived -- a prior sub-expression already created a
	// derived column under this node's candidate name.
	columnName := node.QueryColumn
	if columnName == "" {
		columnName = exprtree.Format(node)
	}
	for _, s := range ctx.Schemas {
		if found := s.FindColumn(columnName); found != nil {
			bound := node.Clone()
			bound.SchemaColumn = columnRef(found)
			if bound.Alias != "" {
				bound.QueryColumn = bound.Alias
			} else {
				bound.QueryColumn = columnName
			}
			return bound, ctx, nil
		}
	}

	// Step 5: recurse into left, centre, right, and parameters.
	node, ctx, err := recurseChildren(node, ctx)
	if err != nil {
		return nil, nil, err
	}

	// Step 6: materialize a derived column, unless suppressed.
	return materializeColumn(node, ctx, columnName)
}

// recurseChildren implements binder §4.2 step 5 / the source's
// traversive_recursive_bind: left, right and centre are bound sequentially,
// threading the context forward; parameters are each bound starting from
// that same post-left/right/centre context, and their resulting schemas are
// merged back together (not threaded parameter-to-parameter).
func recurseChildren(node *exprtree.Node, ctx *Context) (*exprtree.Node, *Context, error) {
	bound := node.Clone()

	if bound.Left != nil {
		l, c, err := Bind(bound.Left, ctx)
		if err != nil {
			return nil, nil, err
		}
		bound.Left, ctx = l, c
	}
	if bound.Right != nil {
		r, c, err := Bind(bound.Right, ctx)
		if err != nil {
			return nil, nil, err
		}
		bound.Right, ctx = r, c
	}
	if bound.Centre != nil {
		m, c, err := Bind(bound.Centre, ctx)
		if err != nil {
			return nil, nil, err
		}
		bound.Centre, ctx = m, c
	}
	if len(bound.Parameters) > 0 {
		newParams := make([]*exprtree.Node, len(bound.Parameters))
		envs := make([]schema.Environment, 0, len(bound.Parameters))
		for i, p := range bound.Parameters {
			b, c, err := Bind(p, ctx)
			if err != nil {
				return nil, nil, err
			}
			newParams[i] = b
			envs = append(envs, c.Schemas)
		}
		merged, err := schema.MergeSchemas(envs...)
		if err != nil {
			return nil, nil, err
		}
		bound.Parameters = newParams
		ctx = ctx.Clone()
		ctx.Schemas = merged
	}

	return bound, ctx, nil
}

// materializeColumn implements binder §4.2 step 6.
func materializeColumn(node *exprtree.Node, ctx *Context, columnName string) (*exprtree.Node, *Context, error) {
	bound := node.Clone()
	aliasOrName := columnName
	if bound.Alias != "" {
		aliasOrName = bound.Alias
	}

	derived := ctx.Schemas[schema.DerivedRelationName]

	switch {
	case bound.NodeType == exprtree.Literal:
		var aliases []string
		if bound.Alias != "" {
			aliases = []string{bound.Alias}
		}
		col := schema.NewConstantColumn(exprtree.Identity(bound), columnName, bound.Type, bound.Literal, aliases)
		ctx = ctx.Clone()
		ctx.Schemas[schema.DerivedRelationName].Append(col)
		bound.SchemaColumn = columnRef(col)
		bound.QueryColumn = aliasOrName
		return bound, ctx, nil

	case bound.NodeType == exprtree.Subquery || bound.DoNotCreateColumn:
		return bound, ctx, nil

	default:
		if existing := derived.FindColumn(columnName); existing != nil {
			// A prior occurrence of this exact sub-expression already
			// created a derived column; recreate it as a flat column
			// preserving identity and relabel this node as EVALUATED
			// (binder §4.2 step 6, second bullet).
			flat := schema.NewFlatColumn(existing.Identity, columnName, exprtree.TypeUnknown)
			flat.Aliases = existing.Aliases
			ctx = ctx.Clone()
			ctx.Schemas[schema.DerivedRelationName].ReplaceByIdentity(flat)
			bound.SchemaColumn = columnRef(flat)
			bound.QueryColumn = aliasOrName
			bound.NodeType = exprtree.Evaluated
			return bound, ctx, nil
		}

		if bound.NodeType == exprtree.Function || bound.NodeType == exprtree.Aggregator {
			descriptor, err := ctx.Functions.Lookup(bound.Value)
			if err != nil {
				return nil, nil, err
			}
			identity := exprtree.Identity(bound)
			var aliases []string
			if bound.Alias != "" {
				aliases = []string{bound.Alias}
			}
			col := schema.NewFunctionColumn(identity, columnName, descriptor, aliases)
			ctx = ctx.Clone()
			ctx.Schemas[schema.DerivedRelationName].Append(col)
			bound.SchemaColumn = columnRef(col)
			bound.QueryColumn = aliasOrName
			return bound, ctx, nil
		}

		identity := exprtree.Identity(bound)
		var aliases []string
		if bound.Alias != "" {
			aliases = []string{bound.Alias}
		}
		col := schema.NewExpressionColumn(identity, columnName, bound, aliases)
		ctx = ctx.Clone()
		ctx.Schemas[schema.DerivedRelationName].Append(col)
		bound.SchemaColumn = columnRef(col)
		bound.QueryColumn = aliasOrName
		return bound, ctx, nil
	}
}
