package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/catalog"
	"github.com/hrygo/creastudio/client"
)

func newCatalogsCmd() *cobra.Command {
	var all, asJSON bool
	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "List post objectives and visual styles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			cache := catalog.New(c.Catalog, exporter)
			defer cache.Close()

			if _, err := unwrap(cmd.ErrOrStderr(), cache.Load(cmd.Context())); err != nil {
				return err
			}
			objectives, styles := cache.ActiveObjectives(), cache.ActiveStyles()
			if all {
				objectives, styles = cache.Objectives(), cache.Styles()
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), client.Catalogs{Objectives: objectives, Styles: styles})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Objectives")
			if err := printCatalog(out, objectives); err != nil {
				return err
			}
			fmt.Fprintln(out, "\nStyles")
			return printCatalog(out, styles)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printCatalog(w io.Writer, entries []client.CatalogEntry) error {
	rows := [][]string{{"ID", "NAME", "ACTIVE", "DESCRIPTION"}}
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Name,
			strconv.FormatBool(e.IsActive),
			truncate(e.Description, 60),
		})
	}
	return table(w, rows)
}
