// internal/driver/wire/display.go
package wire

import (
	"printer-bridge/internal/document"
	"printer-bridge/internal/model"
)

// Customer display commands (DM-D command set), routed through the printer
// by selecting the display as the active peripheral.
var DISPLAY_COMMANDS = struct {
	SELECT_DISPLAY []byte
	SELECT_PRINTER []byte
	CLEAR          []byte
	CURSOR         []byte // + 0 off, 1 on
	BRIGHTNESS     []byte // + 1..4
	BLINK          []byte // + 0 steady, 255 blank
	INTERNATIONAL  []byte // + n
}{
	SELECT_DISPLAY: []byte{0x1B, 0x3D, 0x02}, // ESC = 2
	SELECT_PRINTER: []byte{0x1B, 0x3D, 0x01}, // ESC = 1
	CLEAR:          []byte{0x0C},             // CLR
	CURSOR:         []byte{0x1F, 0x43},       // US C
	BRIGHTNESS:     []byte{0x1F, 0x58},       // US X
	BLINK:          []byte{0x1F, 0x45},       // US E
	INTERNATIONAL:  []byte{0x1B, 0x52},       // ESC R
}

// IsDisplayOp reports whether op targets the customer display
func IsDisplayOp(op document.Op) bool {
	switch op.(type) {
	case document.DisplayClear, document.DisplayText, document.DisplayCursor,
		document.DisplayBacklight, document.DisplayContrast, document.DisplayCharset:
		return true
	}
	return false
}

// EncodeDisplay appends a display op. Consecutive display ops share one
// peripheral selection; the caller closes the run with EndDisplay.
func EncodeDisplay(w *Writer, op document.Op, international func(model.InternationalType) byte) error {
	switch o := op.(type) {
	case document.DisplayClear:
		w.Bytes(DISPLAY_COMMANDS.CLEAR)
	case document.DisplayText:
		data, err := EncodeText(o.Data, model.EncodingWindows1252)
		if err != nil {
			return err
		}
		w.Bytes(data)
	case document.DisplayCursor:
		on := byte(0)
		if o.State != model.CursorOff {
			on = 1
		}
		w.Bytes(DISPLAY_COMMANDS.CURSOR).Cmd(on)
	case document.DisplayBacklight:
		blink := byte(0)
		if !o.On {
			blink = 0xFF
		}
		w.Bytes(DISPLAY_COMMANDS.BLINK).Cmd(blink)
	case document.DisplayContrast:
		w.Bytes(DISPLAY_COMMANDS.BRIGHTNESS).Cmd(ContrastBrightness(o.Level))
	case document.DisplayCharset:
		w.Bytes(DISPLAY_COMMANDS.INTERNATIONAL).Cmd(international(o.Type))
	}
	return nil
}

// BeginDisplay selects the display peripheral
func BeginDisplay(w *Writer) {
	w.Bytes(DISPLAY_COMMANDS.SELECT_DISPLAY)
}

// EndDisplay hands the port back to the printer
func EndDisplay(w *Writer) {
	w.Bytes(DISPLAY_COMMANDS.SELECT_PRINTER)
}

// ContrastBrightness maps a contrast step -3..3 onto the four brightness levels
func ContrastBrightness(c model.Contrast) byte {
	level := Clamp(int(c), -3, 3) + 3
	return byte(1 + level*3/6)
}
