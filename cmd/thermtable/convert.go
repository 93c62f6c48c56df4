package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newConvertCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert single ADC codes or temperatures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "adc CODE...",
		Short: "Convert ADC codes to temperatures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.cfg.Model()
			if err != nil {
				return err
			}

			for _, arg := range args {
				code, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid adc code %q: %w", arg, err)
				}
				temp, err := m.TemperatureFromADC(code)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%.2f\n", code, temp)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "temp CELSIUS...",
		Short: "Convert temperatures to ADC codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := opts.cfg.Model()
			if err != nil {
				return err
			}

			for _, arg := range args {
				temp, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid temperature %q: %w", arg, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%g\t%d\n", temp, m.ADCFromTemperature(temp))
			}
			return nil
		},
	})

	return cmd
}
