package adc

import (
	"time"

	"github.com/go-logr/logr"
	"periph.io/x/conn/v3/physic"

	"github.com/itohio/thermtable/pkg/thermistor"
)

// Reading is a raw sample converted to physical values.
type Reading struct {
	Timestamp   time.Time
	Code        int
	Voltage     physic.ElectricPotential
	Resistance  physic.ElectricResistance
	Temperature physic.Temperature
}

// Converter transforms a RawSample channel into a Reading channel.
type Converter func(in <-chan RawSample) <-chan Reading

// NewConverter creates a converter that runs every sample through m.
// Codes the model cannot convert are logged and dropped.
func NewConverter(m *thermistor.Model, log logr.Logger, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan RawSample) <-chan Reading {
		out := make(chan Reading, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				reading, err := Convert(m, raw)
				if err != nil {
					log.V(1).Info("Failed to convert sample", "code", raw.Code, "error", err.Error())
					continue
				}

				select {
				case out <- reading:
				case <-time.After(time.Second):
					log.Info("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Convert converts a single raw sample.
func Convert(m *thermistor.Model, raw RawSample) (Reading, error) {
	code := int(raw.Code)

	r, err := m.ResistanceFromADC(code)
	if err != nil {
		return Reading{}, err
	}
	celsius, err := m.TemperatureFromADC(code)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Timestamp:   raw.Timestamp,
		Code:        code,
		Voltage:     physic.ElectricPotential(m.Voltage(code) * float64(physic.Volt)),
		Resistance:  physic.ElectricResistance(r * float64(physic.Ohm)),
		Temperature: physic.ZeroCelsius + physic.Temperature(celsius*float64(physic.Kelvin)),
	}, nil
}

// NewAveragingConverter averages every window consecutive codes into one
// sample, the way firmware oversamples the ADC. The last timestamp of each
// window is kept. A partial window is flushed when the input closes.
func NewAveragingConverter(window, bufSize int) func(in <-chan RawSample) <-chan RawSample {
	if window <= 0 {
		window = 1
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan RawSample) <-chan RawSample {
		out := make(chan RawSample, bufSize)

		go func() {
			defer close(out)

			var sum uint32
			var n int
			var last time.Time

			flush := func() {
				if n == 0 {
					return
				}
				out <- RawSample{
					Timestamp: last,
					Code:      uint16((sum + uint32(n)/2) / uint32(n)), // Round to nearest
				}
				sum, n = 0, 0
			}

			for raw := range in {
				sum += uint32(raw.Code)
				last = raw.Timestamp
				n++
				if n >= window {
					flush()
				}
			}
			flush()
		}()

		return out
	}
}
