package thermistor

import (
	"fmt"

	"github.com/chewxy/math32"
)

// TemperatureFromADC32 evaluates TemperatureFromADC in single precision, the
// way an FPU-less firmware using float would.
func (m *Model) TemperatureFromADC32(code int) (float32, error) {
	vs := float32(m.vs)
	rs := float32(m.rs)
	k := float32(m.k)

	v := float32(code) * float32(m.p.VADC) / float32(m.p.Steps)
	if v >= vs {
		return 0, fmt.Errorf("%w: adc %d is at or above divider saturation", ErrDomain, code)
	}
	r := rs * v / (vs - v)
	if r <= 0 || r/k <= 0 {
		return 0, fmt.Errorf("%w: adc %d gives non-positive resistance", ErrDomain, code)
	}

	t := float32(m.p.Beta)/math32.Log(r/k) - ZeroCelsius
	if math32.IsInf(t, 0) || math32.IsNaN(t) {
		return 0, fmt.Errorf("%w: adc %d gives non-finite temperature", ErrDomain, code)
	}
	return t, nil
}
