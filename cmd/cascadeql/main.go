// Command cascadeql is the operator-facing entry point: a cobra root
// command loading configuration before constructing an Engine, exposing an
// explain subcommand that drives the predicate-rewrite optimizer in
// isolation (full SQL parsing is an external collaborator this module does
// not implement) and a query subcommand that reports engine/catalog state
// for a named relation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cascadedb/cascadeql"
	"github.com/cascadedb/cascadeql/internal/config"
)

var configPath string
var catalogPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cascadeql",
		Short: "CascadeQL engine CLI",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file (CONCURRENT_READS, MAX_READ_BUFFER_CAPACITY, METADATA_SERVER)")
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "cascadeql.catalog.db", "path to the local metadata catalog file")

	root.AddCommand(newQueryCmd())
	root.AddCommand(newExplainCmd())
	return root
}

func loadEngine() (*cascadeql.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cascadeql.New(cfg, catalogPath)
}
