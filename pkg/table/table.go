package table

import (
	"fmt"
	"math"

	"github.com/itohio/thermtable/pkg/thermistor"
)

// Point is a single lookup table row.
type Point struct {
	ADC     int // Raw ADC code
	Celsius int // Temperature rounded to whole degrees
}

// Table is an ordered list of points with ascending ADC codes.
type Table []Point

// Converter converts ADC codes into temperatures in °C.
type Converter interface {
	TemperatureFromADC(code int) (float64, error)
}

var _ Converter = (*thermistor.Model)(nil)

// Increment returns the ADC step between consecutive rows.
func Increment(maxADC, numPoints int) (int, error) {
	if numPoints < 2 {
		return 0, fmt.Errorf("%w: need at least 2 points, got %d", thermistor.ErrInvalidParameter, numPoints)
	}

	inc := maxADC / (numPoints - 1)
	if inc < 1 {
		return 0, fmt.Errorf("%w: %d points do not fit into %d ADC codes", thermistor.ErrInvalidParameter, numPoints, maxADC)
	}
	return inc, nil
}

// Codes returns the sampled ADC codes: 1, 1+inc, 1+2*inc, ... strictly below
// maxADC. The upper bound is exclusive, so maxADC itself is never sampled.
func Codes(maxADC, numPoints int) ([]int, error) {
	inc, err := Increment(maxADC, numPoints)
	if err != nil {
		return nil, err
	}

	codes := make([]int, 0, numPoints)
	for code := 1; code < maxADC; code += inc {
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no ADC codes below %d", thermistor.ErrInvalidParameter, maxADC)
	}
	return codes, nil
}

// Generate samples m across [1, maxADC) and returns the lookup table.
// It fails on the first code that cannot be converted: a gap would shift
// every following row of the firmware table.
func Generate(m Converter, maxADC, numPoints int) (Table, error) {
	codes, err := Codes(maxADC, numPoints)
	if err != nil {
		return nil, err
	}

	t := make(Table, 0, len(codes))
	var prev, dir float64
	for i, code := range codes {
		temp, err := m.TemperatureFromADC(code)
		if err != nil {
			return nil, fmt.Errorf("failed to convert adc %d: %w", code, err)
		}

		if i > 0 {
			d := temp - prev
			if d == 0 || d*dir < 0 {
				return nil, fmt.Errorf("%w: temperature is not monotonic at adc %d", thermistor.ErrDomain, code)
			}
			dir = d
		}
		prev = temp

		t = append(t, Point{ADC: code, Celsius: int(math.Round(temp))})
	}

	return t, nil
}
