// Command dbcoreinspect is a thin CLI over dbcore: list tables, print a
// schema, fetch one record, or run a filtered select against a data
// directory. Built on cobra the way darshanime/pebble's tool subcommands
// are, replacing the teacher's uninstalled example/examples mains with one
// runnable entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hartshorn-labs/legacyrec/dbcore"
)

var dataDir string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dbcoreinspect",
		Short: "Inspect legacy fixed-record data directories",
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", ".", "directory containing the data/memo/index files")
	root.AddCommand(listCmd(), schemaCmd(), getCmd(), selectCmd())
	return root
}

func openCatalog() (*dbcore.TableCatalog, error) {
	return dbcore.NewTableCatalog(dbcore.CatalogConfig{DataDir: dataDir, ReadOnly: true})
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			for _, name := range catalog.ListTables() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Print a table's structural schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			schema, err := catalog.Schema(args[0])
			if err != nil {
				return err
			}
			return printJSON(schema)
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Fetch and decode a single record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid record id %q: %w", args[1], err)
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			engine := dbcore.NewQueryEngine(catalog, true)
			rec, err := engine.Get(args[0], uint32(id))
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
}

func selectCmd() *cobra.Command {
	var limit, offset int
	var filterFlags []string
	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Enumerate records with optional field filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := make(map[string]string, len(filterFlags))
			for _, f := range filterFlags {
				name, value, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("invalid --filter %q, expected field=value", f)
				}
				filters[name] = value
			}
			catalog, err := openCatalog()
			if err != nil {
				return err
			}
			engine := dbcore.NewQueryEngine(catalog, true)
			result, err := engine.Select(args[0], dbcore.SelectFilters{Limit: dbcore.IntPtr(limit), Offset: offset, Filters: filters})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum records to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip before the limit window")
	cmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "field=value filter, repeatable")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
