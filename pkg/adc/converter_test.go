package adc

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/itohio/thermtable/pkg/thermistor"
)

func TestConvert(t *testing.T) {
	m := testModel(t)
	now := time.Now()

	r, err := Convert(m, RawSample{Timestamp: now, Code: 512})
	require.NoError(t, err)

	assert.Equal(t, now, r.Timestamp)
	assert.Equal(t, 512, r.Code)
	assert.Equal(t, 2500*physic.MilliVolt, r.Voltage)
	assert.InDelta(t, 4700, float64(r.Resistance)/float64(physic.Ohm), 1e-3)
	assert.InDelta(t, 110.462, r.Temperature.Celsius(), 0.001)

	_, err = Convert(m, RawSample{Code: 0})
	assert.ErrorIs(t, err, thermistor.ErrDomain)
}

func TestNewConverter_DropsInvalid(t *testing.T) {
	in := make(chan RawSample, 4)
	in <- RawSample{Code: 512}
	in <- RawSample{Code: 0}
	in <- RawSample{Code: 978}
	close(in)

	out := NewConverter(testModel(t), logr.Discard(), 0)(in)

	var got []Reading
	for r := range out {
		got = append(got, r)
	}

	require.Len(t, got, 2)
	assert.Equal(t, 512, got[0].Code)
	assert.Equal(t, 978, got[1].Code)
	assert.InDelta(t, 25, got[1].Temperature.Celsius(), 0.2)
}

func TestNewAveragingConverter(t *testing.T) {
	base := time.Unix(1000, 0)
	in := make(chan RawSample, 8)
	for i, code := range []uint16{100, 101, 101, 102, 500, 501, 700} {
		in <- RawSample{Timestamp: base.Add(time.Duration(i) * time.Second), Code: code}
	}
	close(in)

	out := NewAveragingConverter(3, 0)(in)

	var got []RawSample
	for s := range out {
		got = append(got, s)
	}

	require.Len(t, got, 3)
	assert.Equal(t, RawSample{Timestamp: base.Add(2 * time.Second), Code: 101}, got[0]) // 302/3
	assert.Equal(t, RawSample{Timestamp: base.Add(5 * time.Second), Code: 368}, got[1]) // 1103/3 rounds up
	assert.Equal(t, RawSample{Timestamp: base.Add(6 * time.Second), Code: 700}, got[2]) // partial window
}

func TestNewAveragingConverter_Passthrough(t *testing.T) {
	in := make(chan RawSample, 2)
	in <- RawSample{Code: 7}
	in <- RawSample{Code: 9}
	close(in)

	var got []uint16
	for s := range NewAveragingConverter(0, 0)(in) {
		got = append(got, s.Code)
	}
	assert.Equal(t, []uint16{7, 9}, got)
}
