package thermistor

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// epcos is the classic RepRap 100K thermistor on a 4.7K pullup.
func epcos() Parameters {
	return Parameters{R0: 100000, T0: 25, Beta: 4092, R2: 4700}
}

func TestNew_Defaults(t *testing.T) {
	m, err := New(epcos())
	require.NoError(t, err)

	p := m.Parameters()
	assert.Equal(t, DefaultVoltage, p.VADC)
	assert.Equal(t, DefaultVoltage, p.VCC)
	assert.Equal(t, DefaultSteps, p.Steps)

	assert.InDelta(t, 298.15, m.t0, 1e-12)
	assert.InDelta(t, 100000*math.Exp(-4092/298.15), m.k, 1e-12)
	assert.Equal(t, 5.0, m.vs)
	assert.Equal(t, 4700.0, m.rs)
	assert.Equal(t, 1023, m.MaxADC())
}

func TestNew_LowSideResistor(t *testing.T) {
	p := epcos()
	p.R1 = 10000
	m, err := New(p)
	require.NoError(t, err)

	assert.InDelta(t, 10000*5.0/14700, m.vs, 1e-12)
	assert.InDelta(t, 10000*4700.0/14700, m.rs, 1e-9)
	assert.Equal(t, 695, m.MaxADC()) // floor(1023 * 10000/14700)
}

func TestNew_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Parameters)
	}{
		{name: "zero r0", modify: func(p *Parameters) { p.R0 = 0 }},
		{name: "negative r0", modify: func(p *Parameters) { p.R0 = -1 }},
		{name: "zero beta", modify: func(p *Parameters) { p.Beta = 0 }},
		{name: "zero r2", modify: func(p *Parameters) { p.R2 = 0 }},
		{name: "negative r1", modify: func(p *Parameters) { p.R1 = -10 }},
		{name: "negative vadc", modify: func(p *Parameters) { p.VADC = -5 }},
		{name: "negative steps", modify: func(p *Parameters) { p.Steps = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := epcos()
			tt.modify(&p)
			m, err := New(p)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Nil(t, m)
		})
	}
}

func TestTemperatureFromADC_Reference(t *testing.T) {
	m, err := New(epcos())
	require.NoError(t, err)

	// 512 -> 2.5V, so the thermistor equals the 4.7K pullup
	got, err := m.TemperatureFromADC(512)
	require.NoError(t, err)

	k := 100000 * math.Exp(-4092/298.15)
	want := 4092/math.Log(4700/k) - 273.15
	assert.InDelta(t, want, got, 1e-9)
	assert.InDelta(t, 110.462, got, 0.001)
}

func TestTemperatureFromADC_Domain(t *testing.T) {
	m, err := New(epcos())
	require.NoError(t, err)

	_, err = m.TemperatureFromADC(0)
	assert.ErrorIs(t, err, ErrDomain, "zero volts means zero resistance")

	_, err = m.TemperatureFromADC(1024)
	assert.ErrorIs(t, err, ErrDomain, "voltage equal to vs")

	_, err = m.TemperatureFromADC(2000)
	assert.ErrorIs(t, err, ErrDomain, "voltage beyond vs")

	p := epcos()
	p.R1 = 10000
	m, err = New(p)
	require.NoError(t, err)

	_, err = m.TemperatureFromADC(696)
	assert.NoError(t, err)
	_, err = m.TemperatureFromADC(697)
	assert.ErrorIs(t, err, ErrDomain, "above the Thevenin saturation voltage")
}

func TestADCFromTemperature(t *testing.T) {
	m, err := New(epcos())
	require.NoError(t, err)

	// At T0 the thermistor is R0: 5 * 100000/104700 * 1024 / 5
	assert.Equal(t, 978, m.ADCFromTemperature(25))
	assert.Equal(t, 512, m.ADCFromTemperature(110.462))
	assert.Equal(t, 120, m.ADCFromTemperature(200))
}

func TestADCFromTemperature_NotClamped(t *testing.T) {
	p := epcos()
	p.VADC = 2.5 // divider swings to 5V, twice the reference
	m, err := New(p)
	require.NoError(t, err)

	assert.Greater(t, m.ADCFromTemperature(-20), 1023)
}

func TestRoundTrip(t *testing.T) {
	for _, r1 := range []float64{0, 10000} {
		p := epcos()
		p.R1 = r1
		m, err := New(p)
		require.NoError(t, err)

		for code := 20; code < m.MaxADC()-20; code += 7 {
			temp, err := m.TemperatureFromADC(code)
			require.NoError(t, err)
			assert.InDelta(t, code, m.ADCFromTemperature(temp), 1, "r1=%g code=%d", r1, code)
		}

		for temp := 20.0; temp <= 280; temp += 13 {
			code := m.ADCFromTemperature(temp)
			back, err := m.TemperatureFromADC(code)
			require.NoError(t, err)
			// One code is worth several degrees at the hot end of the curve
			assert.InDelta(t, temp, back, 3, "r1=%g temp=%g", r1, temp)
		}
	}
}

func TestMonotonic(t *testing.T) {
	m, err := New(epcos())
	require.NoError(t, err)

	prev, err := m.TemperatureFromADC(1)
	require.NoError(t, err)
	for code := 2; code <= m.MaxADC(); code++ {
		temp, err := m.TemperatureFromADC(code)
		require.NoError(t, err)
		require.Less(t, temp, prev, "code %d", code)
		prev = temp
	}
}

func TestDeterministic(t *testing.T) {
	a, err := New(epcos())
	require.NoError(t, err)
	b, err := New(epcos())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = a.TemperatureFromADC(300)
		}(i)
	}
	wg.Wait()

	want, err := b.TemperatureFromADC(300)
	require.NoError(t, err)
	for _, got := range results {
		assert.Equal(t, math.Float64bits(want), math.Float64bits(got))
	}
}

func TestCustomResolution(t *testing.T) {
	p := epcos()
	p.Steps = 4096
	p.VADC = 3.3
	p.VCC = 3.3
	m, err := New(p)
	require.NoError(t, err)

	assert.Equal(t, 4095, m.MaxADC())

	// 2048/4096 of the supply is still the pullup resistance
	got, err := m.TemperatureFromADC(2048)
	require.NoError(t, err)
	assert.InDelta(t, 110.462, got, 0.001)
}

func TestTemperatureFromADC32(t *testing.T) {
	m, err := New(epcos())
	require.NoError(t, err)

	for _, code := range []int{1, 54, 512, 1008} {
		want, err := m.TemperatureFromADC(code)
		require.NoError(t, err)
		got, err := m.TemperatureFromADC32(code)
		require.NoError(t, err)
		assert.InDelta(t, want, float64(got), 0.05, "code %d", code)
	}

	_, err = m.TemperatureFromADC32(1024)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = m.TemperatureFromADC32(0)
	assert.ErrorIs(t, err, ErrDomain)
}
