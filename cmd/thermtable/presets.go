package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/itohio/thermtable/pkg/config"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in thermistor presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tR0\tT0\tBETA\tDESCRIPTION")
			for _, name := range config.PresetNames() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%s\n", p.Name, p.R0, p.T0, p.Beta, p.Description)
			}
			return w.Flush()
		},
	}
}
