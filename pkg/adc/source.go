package adc

import "time"

const (
	// DefaultBaudRate is the baud rate most printer boards use.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// RawSample is a single ADC code reported by a board.
type RawSample struct {
	Timestamp time.Time
	Code      uint16
}

// Source produces raw ADC samples (real or mocked).
type Source interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	IsConnected() bool
}

var (
	_ Source = (*Serial)(nil)
	_ Source = (*Mock)(nil)
)
