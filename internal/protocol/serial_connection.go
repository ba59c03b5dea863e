// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// SerialConnection implements Transport for RS-232 and Bluetooth SPP ports
type SerialConnection struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
	stats  Stats
}

// NewSerialConnection creates a new serial connection
func NewSerialConnection(config *SerialConfig, logger *zap.Logger) *SerialConnection {
	return &SerialConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

// Open opens the serial connection
func (sc *SerialConnection) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sc.logger.Info("Opening serial port",
		zap.Int("baud_rate", sc.config.BaudRate),
	)

	mode := &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: sc.config.DataBits,
		StopBits: stopBits(sc.config.StopBits),
		Parity:   parity(sc.config.Parity),
	}

	port, err := serial.Open(sc.config.Port, mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port: %w", err)
	}

	sc.port = port
	sc.isOpen = true
	sc.stats.IsConnected = true
	sc.stats.LastActivity = time.Now()

	sc.logger.Info("Serial port opened successfully")
	return nil
}

// Close closes the serial connection
func (sc *SerialConnection) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.isOpen = false
	sc.stats.IsConnected = false

	if err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	sc.logger.Info("Serial port closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (sc *SerialConnection) IsOpen() bool {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.isOpen && sc.port != nil
}

// Write writes data to the serial port and waits for it to drain
func (sc *SerialConnection) Write(ctx context.Context, data []byte) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return fmt.Errorf("serial port not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	startTime := time.Now()
	written := 0
	for written < len(data) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("serial write interrupted after %d bytes: %w", written, err)
		}
		n, err := sc.port.Write(data[written:])
		if err != nil {
			sc.stats.ErrorCount++
			sc.logger.Error("Serial write failed", zap.Error(err))
			return fmt.Errorf("failed to write to serial port: %w", err)
		}
		written += n
	}
	if err := sc.port.Drain(); err != nil {
		sc.logger.Warn("Serial drain failed", zap.Error(err))
	}

	sc.stats.recordWrite(len(data), time.Since(startTime))
	sc.logger.Debug("Serial write completed", zap.Int("bytes", len(data)))
	return nil
}

// Read reads up to maxBytes. A read timeout yields an empty slice.
func (sc *SerialConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if !sc.isOpen || sc.port == nil {
		return nil, fmt.Errorf("serial port not open")
	}

	timeout := sc.config.Timeout
	if d := deadline(ctx, timeout); !d.IsZero() {
		timeout = time.Until(d)
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	if err := sc.port.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	buffer := make([]byte, maxBytes)
	n, err := sc.port.Read(buffer)
	if err != nil {
		sc.stats.ErrorCount++
		return nil, fmt.Errorf("failed to read from serial port: %w", err)
	}

	sc.stats.recordRead(n)
	return buffer[:n], nil
}

// Type returns the interface the port was opened for
func (sc *SerialConnection) Type() model.InterfaceType {
	if sc.config.Interface == "" {
		return model.InterfaceUnknown
	}
	return sc.config.Interface
}

// Stats returns a snapshot of the connection statistics
func (sc *SerialConnection) Stats() Stats {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.stats
}

func stopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

func parity(p string) serial.Parity {
	switch p {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	case "mark":
		return serial.MarkParity
	case "space":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}
