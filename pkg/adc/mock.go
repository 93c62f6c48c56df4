package adc

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/thermtable/pkg/config"
	"github.com/itohio/thermtable/pkg/thermistor"
)

// Mock simulates a board reading a thermistor whose temperature ramps from
// StartTemperature to EndTemperature and back.
type Mock struct {
	cfg   *config.MockConfig
	model *thermistor.Model
	rng   *rand.Rand

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool

	startTime time.Time
}

// NewMock creates a new mocked source for model.
func NewMock(cfg *config.MockConfig, model *thermistor.Model) *Mock {
	if cfg == nil {
		def := config.Default().Monitor.Mock
		cfg = &def
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		model:   model,
		rng:     rand.New(rand.NewSource(1)),
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.done = make(chan struct{})

	go m.generateSamples()

	return nil
}

// Close stops the generator and closes the samples channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	<-m.done
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the mock is running.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			sample := m.generateSample(now.Sub(m.startTime))
			sample.Timestamp = now
			select {
			case m.samples <- sample:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// temperatureAt returns the simulated temperature after elapsed time: a
// triangle wave between the start and end temperatures.
func (m *Mock) temperatureAt(elapsed time.Duration) float64 {
	period := m.cfg.RampPeriod.Seconds()
	if period <= 0 {
		return m.cfg.StartTemperature
	}

	phase := math.Mod(elapsed.Seconds(), 2*period) / period
	if phase > 1 {
		phase = 2 - phase
	}
	return m.cfg.StartTemperature + phase*(m.cfg.EndTemperature-m.cfg.StartTemperature)
}

// generateSample converts the simulated temperature into a clamped ADC code.
func (m *Mock) generateSample(elapsed time.Duration) RawSample {
	code := m.model.ADCFromTemperature(m.temperatureAt(elapsed))
	if m.cfg.Noise > 0 {
		code += m.rng.Intn(2*m.cfg.Noise+1) - m.cfg.Noise
	}

	top := m.model.Parameters().Steps - 1
	if code < 0 {
		code = 0
	} else if code > top {
		code = top
	}

	return RawSample{Code: uint16(code)}
}
