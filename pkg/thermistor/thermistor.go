package thermistor

import (
	"errors"
	"fmt"
	"math"
)

const (
	// ZeroCelsius is 0°C expressed in Kelvin.
	ZeroCelsius = 273.15

	// DefaultVoltage is the ADC reference and divider supply voltage.
	DefaultVoltage = 5.0
	// DefaultSteps is the number of discrete codes of a 10-bit ADC.
	DefaultSteps = 1024
)

var (
	// ErrInvalidParameter is returned when an input violates a precondition.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDomain is returned when a conversion is physically undefined.
	ErrDomain = errors.New("domain error")
)

// Parameters describes a thermistor and the divider it sits in.
//
//	VCC ──R2──┬──────┬── Vout
//	          │      │
//	         Rth     R1
//	          │      │
//	         GND    GND
type Parameters struct {
	R0   float64 // Resistance at T0 (ohms)
	T0   float64 // Temperature at R0 (°C)
	Beta float64 // Beta coefficient (K)
	R1   float64 // Optional low-side resistor (ohms), 0 = none
	R2   float64 // High-side resistor (ohms)

	VADC  float64 // ADC reference (V), 0 = DefaultVoltage
	VCC   float64 // Divider supply (V), 0 = DefaultVoltage
	Steps int     // ADC steps, 0 = DefaultSteps
}

// Model converts between ADC codes and temperatures.
// It is immutable and safe for concurrent use.
type Model struct {
	p Parameters

	t0 float64 // T0 in Kelvin
	k  float64 // r0 * exp(-beta/t0)
	vs float64 // effective bias voltage
	rs float64 // effective bias impedance
}

// New validates p and computes the derived constants.
func New(p Parameters) (*Model, error) {
	switch {
	case p.R0 <= 0:
		return nil, fmt.Errorf("%w: r0 must be positive, got %g", ErrInvalidParameter, p.R0)
	case p.Beta <= 0:
		return nil, fmt.Errorf("%w: beta must be positive, got %g", ErrInvalidParameter, p.Beta)
	case p.R2 <= 0:
		return nil, fmt.Errorf("%w: r2 must be positive, got %g", ErrInvalidParameter, p.R2)
	case p.R1 < 0:
		return nil, fmt.Errorf("%w: r1 must not be negative, got %g", ErrInvalidParameter, p.R1)
	case p.VADC < 0 || p.VCC < 0:
		return nil, fmt.Errorf("%w: voltages must not be negative", ErrInvalidParameter)
	case p.Steps < 0:
		return nil, fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidParameter, p.Steps)
	}

	if p.VADC == 0 {
		p.VADC = DefaultVoltage
	}
	if p.VCC == 0 {
		p.VCC = DefaultVoltage
	}
	if p.Steps == 0 {
		p.Steps = DefaultSteps
	}

	m := &Model{
		p:  p,
		t0: p.T0 + ZeroCelsius,
	}
	m.k = p.R0 * math.Exp(-p.Beta/m.t0)

	if p.R1 > 0 {
		// Thevenin equivalent of R1 || R2 as seen by the thermistor
		m.vs = p.R1 * p.VCC / (p.R1 + p.R2)
		m.rs = p.R1 * p.R2 / (p.R1 + p.R2)
	} else {
		m.vs = p.VCC
		m.rs = p.R2
	}

	return m, nil
}

// Parameters returns the parameters with defaults applied.
func (m *Model) Parameters() Parameters {
	return m.p
}

// MaxADC returns the highest code worth sampling. With a low-side resistor the
// divider output saturates at VCC*R1/(R1+R2), below full scale.
func (m *Model) MaxADC() int {
	top := m.p.Steps - 1
	if m.p.R1 > 0 {
		return int(float64(top) * m.p.R1 / (m.p.R1 + m.p.R2))
	}
	return top
}

// Voltage returns the divider voltage a code represents.
func (m *Model) Voltage(code int) float64 {
	return float64(code) * m.p.VADC / float64(m.p.Steps)
}

// ResistanceFromADC returns the thermistor resistance for a code.
func (m *Model) ResistanceFromADC(code int) (float64, error) {
	v := m.Voltage(code)
	if v >= m.vs {
		return 0, fmt.Errorf("%w: adc %d is at or above divider saturation (%.4gV >= %.4gV)", ErrDomain, code, v, m.vs)
	}
	r := m.rs * v / (m.vs - v)
	if r <= 0 {
		return 0, fmt.Errorf("%w: adc %d gives non-positive resistance %g", ErrDomain, code, r)
	}
	return r, nil
}

// TemperatureFromADC returns the temperature in °C for a code.
func (m *Model) TemperatureFromADC(code int) (float64, error) {
	r, err := m.ResistanceFromADC(code)
	if err != nil {
		return 0, err
	}

	ratio := r / m.k
	if ratio <= 0 {
		return 0, fmt.Errorf("%w: adc %d gives non-positive resistance ratio %g", ErrDomain, code, ratio)
	}

	t := m.p.Beta/math.Log(ratio) - ZeroCelsius
	if math.IsInf(t, 0) || math.IsNaN(t) {
		return 0, fmt.Errorf("%w: adc %d gives non-finite temperature", ErrDomain, code)
	}

	return t, nil
}

// ResistanceAt returns the thermistor resistance at a temperature in °C.
func (m *Model) ResistanceAt(celsius float64) float64 {
	return m.p.R0 * math.Exp(m.p.Beta*(1/(celsius+ZeroCelsius)-1/m.t0))
}

// ADCFromTemperature returns the code the ADC reads at a temperature in °C.
// The result is not clamped to the ADC range.
func (m *Model) ADCFromTemperature(celsius float64) int {
	r := m.ResistanceAt(celsius)
	v := m.vs * r / (m.rs + r)
	return int(math.Round(v / m.p.VADC * float64(m.p.Steps)))
}
