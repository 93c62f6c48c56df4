package adc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.bug.st/serial"
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Opener opens a serial port for reading.
type Opener func(name string, mode *serial.Mode) (io.ReadCloser, error)

func openSerial(name string, mode *serial.Mode) (io.ReadCloser, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Serial reads ADC codes streamed by a board over a serial port. Each line
// is either "code" or "unix_micros,code".
type Serial struct {
	port     string
	baudRate int
	maxCode  int
	log      logr.Logger
	open     Opener

	conn      io.ReadCloser
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	closed    bool // samples channel is closed, the source cannot reconnect
}

// NewSerial creates a serial source. Codes above maxCode are rejected.
func NewSerial(port string, baudRate, bufSize, maxCode int, log logr.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		maxCode:  maxCode,
		log:      log.WithName("serial"),
		open:     openSerial,
		samples:  make(chan RawSample, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// WithOpener replaces the function used to open the port.
func (d *Serial) WithOpener(open Opener) *Serial {
	d.open = open
	return d
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.closed {
		return fmt.Errorf("serial source %s is closed", d.port)
	}

	conn, err := d.open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = conn
	d.connected = true
	d.done = make(chan struct{})

	go d.readSamples(conn, d.done)

	d.log.Info("Connected", "port", d.port, "baud", d.baudRate)
	return nil
}

// Close closes the port and waits for the reader to stop. The reader closes
// the samples channel on its way out.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()
	conn, done := d.conn, d.done
	d.conn = nil
	d.connected = false
	d.mu.Unlock()

	// Closing the port unblocks the scanner
	if err := conn.Close(); err != nil {
		d.log.Error(err, "Error closing serial port")
	}
	<-done

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the port is currently open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from the serial port and parses them into RawSample.
// When the port is closed or fails, it marks the source disconnected and
// closes the samples channel.
func (d *Serial) readSamples(conn io.ReadCloser, done chan struct{}) {
	defer close(done)
	defer d.disconnected(conn)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sample, err := parseLine(line, d.maxCode, time.Now)
		if err != nil {
			d.log.V(1).Info("Failed to parse line", "line", line, "error", err.Error())
			continue
		}

		select {
		case d.samples <- sample:
		case <-d.ctx.Done():
			return
		default:
			d.log.V(1).Info("Samples channel full, dropping sample")
		}
	}

	if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
		d.log.Error(err, "Error reading from serial port")
	}
}

// disconnected releases conn if Close has not already done so and closes
// the samples channel.
func (d *Serial) disconnected(conn io.ReadCloser) {
	d.mu.Lock()
	lost := d.connected && d.conn == conn
	if lost {
		d.conn = nil
		d.connected = false
	}
	d.closed = true
	d.mu.Unlock()

	if lost {
		d.log.Info("Port disconnected", "port", d.port)
		if err := conn.Close(); err != nil {
			d.log.V(1).Info("Error closing serial port", "error", err.Error())
		}
	}
	close(d.samples)
}

// parseLine parses a line from the board into a RawSample.
// Format: [unix_micros,]code
// Example: 1234567890123,512
func parseLine(line string, maxCode int, now func() time.Time) (RawSample, error) {
	parts := strings.Split(line, ",")

	var timestamp time.Time
	switch len(parts) {
	case 1:
		timestamp = now()
	case 2:
		micros, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
		}
		timestamp = time.Unix(0, micros*1000)
	default:
		return RawSample{}, fmt.Errorf("invalid line format: expected 1 or 2 comma-separated values, got %d", len(parts))
	}

	code, err := strconv.ParseUint(strings.TrimSpace(parts[len(parts)-1]), 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid code: %w", err)
	}
	if maxCode > 0 && int(code) > maxCode {
		return RawSample{}, fmt.Errorf("code out of range: %d (max %d)", code, maxCode)
	}

	return RawSample{
		Timestamp: timestamp,
		Code:      uint16(code),
	}, nil
}
