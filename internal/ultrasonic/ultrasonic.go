// Package ultrasonic reads a serial-attached ultrasonic ranging sensor.
// The sensor speaks a trigger/response protocol: one 0x55 byte requests a
// measurement, the reply is the distance in millimeters as a big-endian
// 16-bit value.
package ultrasonic

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YousefSamm/smart-vision-assistant/internal/mode"
	"github.com/YousefSamm/smart-vision-assistant/internal/serialio"
)

const (
	triggerByte = 0x55

	// Readings outside the sensor's rated window are transmission noise.
	minValidMM = 20
	maxValidMM = 4500

	defaultBaudRate    = 9600
	defaultReadTimeout = 500 * time.Millisecond
)

// Options configures the sensor connection.
type Options struct {
	// Port is the serial device path, e.g. /dev/ttyUSB0.
	Port string
	// BaudRate defaults to 9600.
	BaudRate int
	// ReadTimeout bounds one measurement reply. Zero selects the default.
	ReadTimeout time.Duration
}

// Sensor issues measurements over an open serial port. Reads and writes are
// serialized so a late reply never corrupts the next measurement.
type Sensor struct {
	mu     sync.Mutex
	port   serialio.Port
	logger *slog.Logger
}

// NewSensor wraps an already-open port.
func NewSensor(port serialio.Port, logger *slog.Logger) *Sensor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sensor{port: port, logger: logger}
}

// MeasureDistanceCM triggers one measurement and returns the distance in
// centimeters.
func (s *Sensor) MeasureDistanceCM(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.port.Write([]byte{triggerByte}); err != nil {
		return 0, fmt.Errorf("trigger measurement: %w", err)
	}

	// The port's Read returns (0, nil) when its read timeout expires; a
	// zero-byte read means the echo never arrived.
	reply := make([]byte, 0, 2)
	buf := make([]byte, 2)
	for len(reply) < 2 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := s.port.Read(buf[:2-len(reply)])
		if err != nil {
			return 0, fmt.Errorf("read measurement reply: %w", err)
		}
		if n == 0 {
			return 0, fmt.Errorf("measurement reply timed out after %d of 2 bytes", len(reply))
		}
		reply = append(reply, buf[:n]...)
	}

	mm := binary.BigEndian.Uint16(reply)
	if mm < minValidMM || mm > maxValidMM {
		return 0, fmt.Errorf("reading out of range: %d mm", mm)
	}

	cm := float64(mm) / 10
	s.logger.Debug("distance measured", "cm", cm)
	return cm, nil
}

// Close releases the serial port.
func (s *Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

// Opener opens the sensor on demand so the serial port is only held while the
// ranging activity is running.
type Opener struct {
	opts   Options
	logger *slog.Logger
}

// NewOpener validates the device path.
func NewOpener(opts Options, logger *slog.Logger) (*Opener, error) {
	if opts.Port == "" {
		return nil, fmt.Errorf("ultrasonic port cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.BaudRate <= 0 {
		opts.BaudRate = defaultBaudRate
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	return &Opener{opts: opts, logger: logger}, nil
}

// OpenRanger opens the serial port and returns the sensor with its closer.
func (o *Opener) OpenRanger(_ context.Context) (mode.Ranger, func(), error) {
	port, err := serialio.Open(o.opts.Port, o.opts.BaudRate)
	if err != nil {
		return nil, nil, err
	}
	if err := port.SetReadTimeout(o.opts.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, nil, fmt.Errorf("set read timeout on %s: %w", o.opts.Port, err)
	}

	sensor := NewSensor(port, o.logger)
	o.logger.Info("ranging sensor opened",
		"port", o.opts.Port,
		"baud_rate", o.opts.BaudRate,
	)
	closer := func() {
		if err := sensor.Close(); err != nil {
			o.logger.Error("close ranging sensor", "error", err.Error())
		}
	}
	return sensor, closer, nil
}
