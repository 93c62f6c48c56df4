package table

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// DefaultOversample is the firmware macro each ADC code is multiplied by.
const DefaultOversample = "OVERSAMPLENR"

// Format renders a Table as a C array literal.
type Format struct {
	Name       string   // Array name, rows only when empty
	Oversample string   // Multiplier macro for ADC codes, none when empty
	Progmem    bool     // Place the array in flash (AVR)
	Header     []string // Comment lines written before the array
}

// Write writes t to w.
func (f Format) Write(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)

	for _, line := range f.Header {
		fmt.Fprintf(bw, "// %s\n", line)
	}

	if f.Name != "" {
		attr := ""
		if f.Progmem {
			attr = " PROGMEM"
		}
		fmt.Fprintf(bw, "const short %s[][2]%s = {\n", f.Name, attr)
	}

	for i, p := range t {
		sep := ","
		if i == len(t)-1 {
			sep = ""
		}
		if f.Oversample != "" {
			fmt.Fprintf(bw, "   {%4d*%s, %4d}%s\n", p.ADC, f.Oversample, p.Celsius, sep)
		} else {
			fmt.Fprintf(bw, "   {%4d, %4d}%s\n", p.ADC, p.Celsius, sep)
		}
	}

	if f.Name != "" {
		fmt.Fprintln(bw, "};")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// Converter32 evaluates temperatures in single precision.
type Converter32 interface {
	TemperatureFromADC32(code int) (float32, error)
}

// Deviation returns the largest absolute difference in °C between the double
// and single precision evaluations of the table codes, and the code it occurs
// at. Row rounding is not part of the difference.
func Deviation(t Table, m Converter, m32 Converter32) (float64, int, error) {
	var worst float64
	var at int
	for _, p := range t {
		want, err := m.TemperatureFromADC(p.ADC)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to convert adc %d: %w", p.ADC, err)
		}
		got, err := m32.TemperatureFromADC32(p.ADC)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to convert adc %d: %w", p.ADC, err)
		}
		if d := math.Abs(float64(got) - want); d > worst {
			worst, at = d, p.ADC
		}
	}
	return worst, at, nil
}
