package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/itohio/thermtable/pkg/table"
)

// argv is echoed into the table header.
var argv = os.Args

type generateOptions struct {
	*options

	points  int
	maxADC  int
	name    string
	progmem bool
	check   bool
}

func (g *generateOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&g.points, "num-temps", "n", 20, "Number of temperature points to generate")
	f.IntVar(&g.maxADC, "max-adc", 0, "Maximum ADC value when no R1 is used (default steps-1)")
	f.StringVar(&g.name, "name", "", "Produce output as array with given name")
	f.BoolVar(&g.progmem, "progmem", false, "Declare the array PROGMEM")
	f.BoolVar(&g.check, "check", false, "Report the worst deviation from a float32 evaluation")
}

func (g *generateOptions) run(cmd *cobra.Command, args []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())
	cfg := g.cfg

	flags := cmd.Flags()
	if flags.Changed("num-temps") {
		cfg.Table.Points = g.points
	}
	if flags.Changed("max-adc") {
		cfg.ADC.MaxADC = g.maxADC
	}
	if flags.Changed("name") {
		cfg.Table.Name = g.name
	}
	if flags.Changed("progmem") {
		cfg.Table.Progmem = g.progmem
	}

	m, err := cfg.Model()
	if err != nil {
		return err
	}

	maxADC := cfg.MaxADC(m)
	log.Info("Generating table", "params", m.Parameters(), "maxADC", maxADC, "points", cfg.Table.Points)

	t, err := table.Generate(m, maxADC, cfg.Table.Points)
	if err != nil {
		return err
	}

	f := table.Format{
		Name:       cfg.Table.Name,
		Oversample: cfg.Table.Oversample,
		Progmem:    cfg.Table.Progmem,
		Header: []string{
			"Thermistor lookup table for RepRap Temperature Sensor Boards (http://make.rrrf.org/ts)",
			"Made with thermtable",
			strings.Join(argv, " "),
		},
	}
	if err := f.Write(cmd.OutOrStdout(), t); err != nil {
		return err
	}

	if g.check {
		dev, at, err := table.Deviation(t, m, m)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "max deviation from float32 evaluation: %.6f°C at adc %d\n", dev, at)
	}

	return nil
}
