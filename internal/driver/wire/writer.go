// internal/driver/wire/writer.go

// Package wire holds the byte level helpers shared by the emulation encoders:
// a command writer, text encoding, raster conversion and the customer display
// command set.
package wire

import (
	"bytes"
	"errors"
)

var (
	// ErrUnsupportedOp is returned when an emulation has no encoding for an operation
	ErrUnsupportedOp = errors.New("operation not supported by emulation")
	// ErrBadStatus is returned when a status reply cannot be decoded
	ErrBadStatus = errors.New("malformed status reply")
	// ErrInvalidPayload is returned when an operation payload cannot be carried by its command
	ErrInvalidPayload = errors.New("operation payload does not fit its command")
)

// MaxBarcodeData is the largest barcode payload a single barcode command carries
const MaxBarcodeData = 255

// Writer accumulates device commands
type Writer struct {
	buf bytes.Buffer
}

// Cmd appends raw command bytes
func (w *Writer) Cmd(b ...byte) *Writer {
	w.buf.Write(b)
	return w
}

// Bytes appends a byte slice
func (w *Writer) Bytes(b []byte) *Writer {
	w.buf.Write(b)
	return w
}

// U16 appends n as little endian nL nH
func (w *Writer) U16(n int) *Writer {
	w.buf.WriteByte(byte(n & 0xFF))
	w.buf.WriteByte(byte((n >> 8) & 0xFF))
	return w
}

// Repeat appends b n times
func (w *Writer) Repeat(b byte, n int) *Writer {
	for i := 0; i < n; i++ {
		w.buf.WriteByte(b)
	}
	return w
}

// Len returns the number of bytes written
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Result returns the accumulated bytes
func (w *Writer) Result() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	return out
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Chunks splits total into pieces no larger than max, calling fn for each
func Chunks(total, max int, fn func(n int)) {
	for total > 0 {
		n := total
		if n > max {
			n = max
		}
		fn(n)
		total -= n
	}
}
