package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/internal/version"
)

func newVersionCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// The version needs no profile or data directory.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			if full {
				fmt.Fprintln(cmd.OutOrStdout(), version.StringFull())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include build metadata")
	return cmd
}
