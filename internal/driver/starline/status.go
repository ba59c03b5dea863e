// internal/driver/starline/status.go
package starline

import (
	"fmt"

	"printer-bridge/internal/driver/wire"
	"printer-bridge/internal/model"
)

// Automatic status bytes; header bit 0 is always set and bit 4 always clear.
const (
	headerMask  = 0x11
	headerValue = 0x01

	minStatusLength = 7

	// byte 2
	statusDrawer    = 0x04
	statusOffline   = 0x08
	statusCoverOpen = 0x20

	// byte 3
	errorCutter     = 0x08
	errorMechanical = 0x20
	errorHeadTemp   = 0x40

	// byte 5
	sensorNearEnd  = 0x04
	sensorPaperEnd = 0x08
)

func (e *Encoder) StatusRequest() []byte {
	return STAR_LINE_COMMANDS.STATUS_REQUEST
}

func (e *Encoder) StatusLength() int {
	return 9
}

// statusLength decodes the reply length announced by the header byte
func statusLength(header byte) int {
	return int((header>>2)&0x08 | (header>>1)&0x07)
}

// StatusReplyLength returns the full reply length announced by header
func (e *Encoder) StatusReplyLength(header byte) int {
	if n := statusLength(header); n >= minStatusLength {
		return n
	}
	return minStatusLength
}

// ParseStatus decodes an automatic status block
func (e *Encoder) ParseStatus(reply []byte) (*model.Status, error) {
	if len(reply) < minStatusLength {
		return nil, fmt.Errorf("%w: expected at least %d bytes, got %d", wire.ErrBadStatus, minStatusLength, len(reply))
	}
	header := reply[0]
	if header&headerMask != headerValue {
		return nil, fmt.Errorf("%w: header is 0x%02X", wire.ErrBadStatus, header)
	}
	if n := statusLength(header); n > len(reply) {
		return nil, fmt.Errorf("%w: header announces %d bytes, got %d", wire.ErrBadStatus, n, len(reply))
	}

	state, errs, sensor := reply[2], reply[3], reply[5]

	status := &model.Status{
		CoverOpen:             state&statusCoverOpen != 0,
		DrawerOpenCloseSignal: state&statusDrawer != 0,
		PaperEmpty:            sensor&sensorPaperEnd != 0,
		PaperNearEmpty:        sensor&sensorNearEnd != 0,
		CutterError:           errs&errorCutter != 0,
	}
	status.PaperPresent = !status.PaperEmpty
	status.HasError = state&statusOffline != 0 ||
		errs&(errorCutter|errorMechanical|errorHeadTemp) != 0 ||
		status.CoverOpen ||
		status.PaperEmpty
	return status, nil
}
