package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cascadedb/cascadeql/internal/exprtree"
	"github.com/cascadedb/cascadeql/internal/rewrite"
)

func newExplainCmd() *cobra.Command {
	var column, operator, pattern string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show how the predicate-rewrite optimizer transforms a single comparison",
		Long: "explain builds one comparison predicate (column <operator> 'pattern') and prints " +
			"it before and after the predicate-rewrite optimizer, the same rewrite a planner would " +
			"apply to every Filter node's children before pushing them down to a connector.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if column == "" {
				return fmt.Errorf("--column is required")
			}
			pred := &exprtree.Node{
				NodeType: exprtree.ComparisonOperator,
				Value:    operator,
				Left:     &exprtree.Node{NodeType: exprtree.Identifier, SourceColumn: column},
				Right:    &exprtree.Node{NodeType: exprtree.Literal, Literal: exprtree.Value{Kind: exprtree.KindString, Str: pattern}},
			}

			before := exprtree.Format(pred)
			after := exprtree.Format(rewrite.RewritePredicate(pred))

			fmt.Fprintf(cmd.OutOrStdout(), "before: %s\n", before)
			fmt.Fprintf(cmd.OutOrStdout(), "after:  %s\n", after)
			return nil
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "the predicate's left-hand column name")
	cmd.Flags().StringVar(&operator, "operator", "Like", "the comparison operator (Like, ILike, NotLike, InList, ...)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "the right-hand literal pattern")
	return cmd
}
