package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var relation string
	var putSchema string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect the engine's configuration and a relation's cached schema",
		Long: "query loads configuration and opens the metadata catalog, then reports the " +
			"cached schema for --relation (or stores one, with --put-schema). Compiling and " +
			"running SQL text is out of scope for this command; an embedding host is expected " +
			"to construct a bound logical plan itself and drive it with the cascadeql.Engine API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "concurrent_reads=%d max_read_buffer_capacity=%d metadata_server=%s\n",
				engine.Config.ConcurrentReads, engine.Config.MaxReadBufferCapacity, engine.Config.MetadataServer)

			if relation == "" {
				return nil
			}

			ctx := context.Background()
			key := relation + ".schema"

			if putSchema != "" {
				if err := engine.Catalog.Put(ctx, key, []byte(putSchema)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored schema for %s\n", relation)
				return nil
			}

			value, ok, err := engine.Catalog.Get(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no cached schema for %s\n", relation)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", string(value))
			return nil
		},
	}

	cmd.Flags().StringVar(&relation, "relation", "", "relation name to look up in the metadata catalog")
	cmd.Flags().StringVar(&putSchema, "put-schema", "", "if set, store this JSON schema under --relation instead of reading it")
	return cmd
}
