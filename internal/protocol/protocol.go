// internal/protocol/protocol.go
package protocol

import (
	"context"
	"fmt"
	"time"

	"printer-bridge/internal/model"
)

// Transport is a raw byte channel to a printer
type Transport interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)

	// Transport information
	Type() model.InterfaceType
	Stats() Stats
}

// Stats provides transport-level statistics
type Stats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

func (s *Stats) recordWrite(n int, latency time.Duration) {
	s.BytesWritten += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
	if s.AverageLatency == 0 {
		s.AverageLatency = latency
	} else {
		s.AverageLatency = (s.AverageLatency + latency) / 2
	}
}

func (s *Stats) recordRead(n int) {
	s.BytesRead += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
}

// ReadFull reads exactly n bytes, or fails when ctx expires first
func ReadFull(ctx context.Context, t Transport, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("read %d of %d bytes: %w", len(out), n, err)
		}
		chunk, err := t.Read(ctx, n-len(out))
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// deadline returns the earlier of the ctx deadline and now+timeout
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if cd, ok := ctx.Deadline(); ok && (d.IsZero() || cd.Before(d)) {
		d = cd
	}
	return d
}
