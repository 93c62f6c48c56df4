package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/itohio/thermtable/pkg/adc"
)

type monitorOptions struct {
	*options

	port    string
	baud    int
	mock    bool
	average int
	count   int
	list    bool
}

func newMonitorCmd(opts *options) *cobra.Command {
	mo := &monitorOptions{options: opts}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream ADC codes from a board and show them as temperatures",
		Args:  cobra.NoArgs,
		RunE:  mo.run,
	}

	f := cmd.Flags()
	f.StringVarP(&mo.port, "port", "p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
	f.IntVar(&mo.baud, "baud", 0, "Serial baud rate override")
	f.BoolVar(&mo.mock, "mock", false, "Use a simulated board instead of the serial port")
	f.IntVar(&mo.average, "average-samples", -1, "Number of codes to average (0 = disabled, overrides config)")
	f.IntVarP(&mo.count, "count", "n", 0, "Stop after this many readings (0 = until interrupted)")
	f.BoolVar(&mo.list, "list", false, "List serial ports and exit")

	return cmd
}

func (mo *monitorOptions) run(cmd *cobra.Command, args []string) error {
	log := logr.FromContextOrDiscard(cmd.Context())
	cfg := mo.cfg

	if mo.list {
		ports, err := adc.Ports()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p.Name)
		}
		return nil
	}

	if mo.port != "" {
		cfg.Serial.Port = mo.port
	}
	if mo.baud > 0 {
		cfg.Serial.BaudRate = mo.baud
	}
	if mo.average >= 0 {
		cfg.Monitor.AverageSamples = mo.average
	}

	m, err := cfg.Model()
	if err != nil {
		return err
	}

	var source adc.Source
	if mo.mock {
		source = adc.NewMock(&cfg.Monitor.Mock, m)
		log.Info("Using mocked board")
	} else {
		source = adc.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, adc.DefaultBufferSize, m.Parameters().Steps-1, log)
	}

	if err := source.Connect(); err != nil {
		return err
	}
	defer source.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	raw := source.Samples()
	if cfg.Monitor.AverageSamples > 0 {
		raw = adc.NewAveragingConverter(cfg.Monitor.AverageSamples, adc.DefaultBufferSize)(raw)
	}
	readings := adc.NewConverter(m, log, adc.DefaultBufferSize)(raw)

	return printReadings(ctx, cmd, readings, mo.count)
}

func printReadings(ctx context.Context, cmd *cobra.Command, readings <-chan adc.Reading, count int) error {
	out := cmd.OutOrStdout()
	for n := 0; count == 0 || n < count; n++ {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-readings:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%s\t%4d\t%s\t%s\t%.2f°C\n",
				r.Timestamp.Format("15:04:05.000"), r.Code, r.Voltage, r.Resistance, r.Temperature.Celsius())
		}
	}
	return nil
}
