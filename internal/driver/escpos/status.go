// internal/driver/escpos/status.go
package escpos

import (
	"fmt"

	"printer-bridge/internal/driver/wire"
	"printer-bridge/internal/model"
)

// Bits of the four DLE EOT replies
const (
	printerDrawerSignal = 0x04
	printerOffline      = 0x08

	offlineCoverOpen = 0x04
	offlinePaperEnd  = 0x20
	offlineError     = 0x40

	errorCutter        = 0x08
	errorUnrecoverable = 0x20
	errorRecoverable   = 0x40

	paperNearEnd = 0x0C
	paperEnd     = 0x60

	// bits 1 and 4 are always set, bits 0 and 7 always clear
	fixedMask  = 0x93
	fixedValue = 0x12
)

func (e *Encoder) StatusRequest() []byte {
	return ESC_POS_COMMANDS.STATUS_REQUEST
}

func (e *Encoder) StatusLength() int {
	return 4
}

// ParseStatus decodes the replies to DLE EOT 1, 2, 3 and 4 in that order
func (e *Encoder) ParseStatus(reply []byte) (*model.Status, error) {
	if len(reply) < 4 {
		return nil, fmt.Errorf("%w: expected 4 bytes, got %d", wire.ErrBadStatus, len(reply))
	}
	for i, b := range reply[:4] {
		if b&fixedMask != fixedValue {
			return nil, fmt.Errorf("%w: byte %d is 0x%02X", wire.ErrBadStatus, i, b)
		}
	}

	printer, offline, errs, paper := reply[0], reply[1], reply[2], reply[3]

	status := &model.Status{
		CoverOpen:             offline&offlineCoverOpen != 0,
		DrawerOpenCloseSignal: printer&printerDrawerSignal != 0,
		PaperEmpty:            paper&paperEnd != 0 || offline&offlinePaperEnd != 0,
		PaperNearEmpty:        paper&paperNearEnd != 0,
		CutterError:           errs&errorCutter != 0,
	}
	status.PaperPresent = !status.PaperEmpty
	status.HasError = printer&printerOffline != 0 ||
		offline&offlineError != 0 ||
		errs&(errorCutter|errorUnrecoverable|errorRecoverable) != 0 ||
		status.CoverOpen ||
		status.PaperEmpty
	return status, nil
}
