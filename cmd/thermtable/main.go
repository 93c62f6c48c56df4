package main

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/itohio/thermtable/internal/logging"
	"github.com/itohio/thermtable/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds flags shared by every command.
type options struct {
	configFile string
	verbose    bool
	debug      bool

	preset string
	r0     float64
	t0     float64
	beta   float64
	r1     float64
	r2     float64
	vref   float64
	steps  int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	gen := &generateOptions{options: opts}

	cmd := &cobra.Command{
		Use:   "thermtable",
		Short: "Generate thermistor lookup tables for printer firmware",
		Long: `Generates ADC code to temperature lookup tables for firmware.

The quantities refer to the following circuit:

     Vref ──────┐
                │
                R2
                │
                ├────────┬──── Vout
                │        │
               Rth       R1
                │        │
               GND      GND

The thermistor follows R(T) = R0 * exp(beta * (1/T - 1/T0)).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cmd.ErrOrStderr(), logging.Level(opts.verbose, opts.debug))
			cmd.SetContext(logr.NewContext(cmd.Context(), log))

			cfg, err := opts.load(cmd)
			if err != nil {
				log.Error(err, "Failed to load configuration", "file", opts.configFile)
				return err
			}
			opts.cfg = cfg
			return nil
		},
		RunE: gen.run,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "thermtable.yaml", "Configuration file path")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (info level)")
	pf.BoolVarP(&opts.debug, "debug", "d", false, "debug output (shows V(1) logs)")
	pf.StringVar(&opts.preset, "preset", "", "Thermistor preset (see 'thermtable presets')")
	pf.Float64Var(&opts.r0, "r0", 0, "Resistance of thermistor at T0 in ohms")
	pf.Float64Var(&opts.t0, "t0", config.DefaultT0, "T0 parameter of thermistor in Celsius")
	pf.Float64Var(&opts.beta, "beta", 0, "Beta parameter of thermistor")
	pf.Float64Var(&opts.r1, "r1", 0, "Value of the optional low-side resistor in ohms")
	pf.Float64Var(&opts.r2, "r2", 0, "Value of the high-side resistor in ohms")
	pf.Float64Var(&opts.vref, "vref", 0, "ADC reference and divider supply voltage")
	pf.IntVar(&opts.steps, "steps", 0, "Number of ADC codes (1024 for a 10-bit ADC)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "debug")

	gen.addFlags(cmd)

	cmd.AddCommand(newConvertCmd(opts))
	cmd.AddCommand(newMonitorCmd(opts))
	cmd.AddCommand(newPresetsCmd())

	return cmd
}

// load reads the configuration file and applies flags given on the command line.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Thermistor.Preset = o.preset
	}
	if flags.Changed("r0") {
		cfg.Thermistor.R0 = o.r0
	}
	if flags.Changed("t0") {
		t0 := o.t0
		cfg.Thermistor.T0 = &t0
	}
	if flags.Changed("beta") {
		cfg.Thermistor.Beta = o.beta
	}
	if flags.Changed("r1") {
		cfg.VoltageDivider.R1 = o.r1
	}
	if flags.Changed("r2") {
		cfg.VoltageDivider.R2 = o.r2
	}
	if flags.Changed("vref") {
		cfg.ADC.VRef = o.vref
		cfg.VoltageDivider.VCC = o.vref
	}
	if flags.Changed("steps") {
		cfg.ADC.Steps = o.steps
	}

	return cfg, nil
}
