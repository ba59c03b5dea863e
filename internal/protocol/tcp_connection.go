// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-bridge/internal/model"
)

// TCPConnection implements Transport for LAN printers (raw port 9100)
type TCPConnection struct {
	config *TCPConfig
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
	stats  Stats
}

// NewTCPConnection creates a new TCP connection
func NewTCPConnection(config *TCPConfig, logger *zap.Logger) *TCPConnection {
	return &TCPConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("host", config.Host),
			zap.Int("port", config.Port),
		),
	}
}

// Address returns host:port
func (tc *TCPConnection) Address() string {
	return net.JoinHostPort(tc.config.Host, strconv.Itoa(tc.config.Port))
}

// Open opens the TCP connection
func (tc *TCPConnection) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.isOpen {
		return nil
	}

	tc.logger.Info("Opening TCP connection")

	dialer := &net.Dialer{
		Timeout: tc.config.Timeout,
	}
	if tc.config.KeepAlive {
		dialer.KeepAlive = 30 * time.Second
	}

	conn, err := dialer.DialContext(ctx, "tcp", tc.Address())
	if err != nil {
		tc.logger.Error("Failed to open TCP connection", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", tc.Address(), err)
	}

	tc.conn = conn
	tc.isOpen = true
	tc.stats.IsConnected = true
	tc.stats.LastActivity = time.Now()

	tc.logger.Info("TCP connection opened successfully")
	return nil
}

// Close closes the TCP connection
func (tc *TCPConnection) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return nil
	}

	err := tc.conn.Close()
	tc.conn = nil
	tc.isOpen = false
	tc.stats.IsConnected = false

	if err != nil {
		tc.logger.Error("Failed to close TCP connection", zap.Error(err))
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}

	tc.logger.Info("TCP connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (tc *TCPConnection) IsOpen() bool {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.isOpen && tc.conn != nil
}

// Write writes data to the TCP connection. A write that misses its deadline
// leaves the connection unusable and closes it.
func (tc *TCPConnection) Write(ctx context.Context, data []byte) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return fmt.Errorf("TCP connection not open")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tc.conn.SetWriteDeadline(deadline(ctx, tc.config.WriteTimeout))

	startTime := time.Now()
	n, err := tc.conn.Write(data)
	if err != nil {
		tc.stats.ErrorCount++
		tc.logger.Error("TCP write failed", zap.Error(err), zap.Int("written", n))
		tc.dropLocked()
		return fmt.Errorf("failed to write to TCP connection: %w", err)
	}

	tc.stats.recordWrite(len(data), time.Since(startTime))
	tc.logger.Debug("TCP write completed", zap.Int("bytes", len(data)))
	return nil
}

// Read reads up to maxBytes from the TCP connection
func (tc *TCPConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if !tc.isOpen || tc.conn == nil {
		return nil, fmt.Errorf("TCP connection not open")
	}

	tc.conn.SetReadDeadline(deadline(ctx, tc.config.ReadTimeout))

	buffer := make([]byte, maxBytes)
	n, err := tc.conn.Read(buffer)
	if err != nil {
		tc.stats.ErrorCount++
		return nil, fmt.Errorf("failed to read from TCP connection: %w", err)
	}

	tc.stats.recordRead(n)
	return buffer[:n], nil
}

// Type returns the interface type
func (tc *TCPConnection) Type() model.InterfaceType {
	return model.InterfaceLAN
}

// Stats returns a snapshot of the connection statistics
func (tc *TCPConnection) Stats() Stats {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	return tc.stats
}

func (tc *TCPConnection) dropLocked() {
	if tc.conn != nil {
		tc.conn.Close()
	}
	tc.conn = nil
	tc.isOpen = false
	tc.stats.IsConnected = false
}
