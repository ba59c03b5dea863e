// internal/driver/encoder.go
package driver

import (
	"printer-bridge/internal/document"
	"printer-bridge/internal/driver/wire"
	"printer-bridge/internal/model"
)

var (
	ErrUnsupportedOp  = wire.ErrUnsupportedOp
	ErrBadStatus      = wire.ErrBadStatus
	ErrInvalidPayload = wire.ErrInvalidPayload
)

// Encoder turns a finalized document into the byte stream of one emulation
type Encoder interface {
	Emulation() model.Emulation
	Encode(buf document.Buffer) ([]byte, error)
	// StatusRequest is written to the device to solicit a status reply
	StatusRequest() []byte
	// StatusLength is the number of reply bytes ParseStatus expects
	StatusLength() int
	ParseStatus(reply []byte) (*model.Status, error)
}

// StatusFramer is implemented by emulations whose status reply announces its
// own length in the first byte
type StatusFramer interface {
	StatusReplyLength(header byte) int
}
