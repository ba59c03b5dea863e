// internal/driver/escpos/encoder.go

// Package escpos encodes documents for printers speaking ESC/POS.
package escpos

import (
	"fmt"

	"printer-bridge/internal/document"
	"printer-bridge/internal/driver/wire"
	"printer-bridge/internal/model"
)

// Encoder produces ESC/POS byte streams
type Encoder struct{}

// New creates an ESC/POS encoder
func New() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Emulation() model.Emulation {
	return model.EmulationEscPos
}

// Encode serializes the buffer after a printer reset. Display operations are
// grouped into runs bracketed by peripheral selection.
func (e *Encoder) Encode(buf document.Buffer) ([]byte, error) {
	w := &wire.Writer{}
	w.Bytes(ESC_POS_COMMANDS.INITIALIZE)
	inDisplay := false

	for _, op := range buf.Ops() {
		if wire.IsDisplayOp(op) {
			if !inDisplay {
				wire.BeginDisplay(w)
				inDisplay = true
			}
			if err := wire.EncodeDisplay(w, op, international); err != nil {
				return nil, err
			}
			continue
		}
		if inDisplay {
			wire.EndDisplay(w)
			inDisplay = false
		}
		if err := e.encodeOp(w, op); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", op.Name(), err)
		}
	}
	if inDisplay {
		wire.EndDisplay(w)
	}
	return w.Result(), nil
}

func (e *Encoder) encodeOp(w *wire.Writer, op document.Op) error {
	cmd := ESC_POS_COMMANDS

	switch o := op.(type) {
	case document.International:
		w.Bytes(cmd.INTERNATIONAL).Cmd(international(o.Type))
	case document.CodePage:
		if n, ok := codePages[o.Page]; ok {
			w.Bytes(cmd.CODE_PAGE).Cmd(n)
		}
	case document.Alignment:
		w.Bytes(cmd.ALIGN).Cmd(alignment(o.Align))
	case document.Emphasis:
		w.Bytes(cmd.TEXT_BOLD).Cmd(flag(o.On))
	case document.Underline:
		w.Bytes(cmd.TEXT_UNDERLINE).Cmd(flag(o.On))
	case document.Invert:
		w.Bytes(cmd.TEXT_INVERT).Cmd(flag(o.On))
	case document.Magnification:
		width := wire.Clamp(o.Width, 1, 8) - 1
		height := wire.Clamp(o.Height, 1, 8) - 1
		w.Bytes(cmd.TEXT_SIZE).Cmd(byte(width<<4 | height))
	case document.Text:
		data, err := wire.EncodeText(o.Data, o.Encoding)
		if err != nil {
			return err
		}
		w.Bytes(data)
	case document.Raw:
		w.Bytes(o.Data)
	case document.Barcode:
		return e.barcode(w, o)
	case document.QRCode:
		e.qrCode(w, o)
	case document.Image:
		raster(w, wire.Rasterize(o.Source, o.WidthDots, o.Threshold, o.Diffusion, o.Rotation))
	case document.RuledLine:
		raster(w, wire.Rule(o.WidthDots, o.ThicknessDots, o.OffsetDots, o.Style))
	case document.Cut:
		w.Bytes(cut(o.Mode))
	case document.Feed:
		dots := int(o.Lines.Mul(decimalLineDots).Round(0).IntPart())
		wire.Chunks(dots, 255, func(n int) { w.Bytes(cmd.FEED_DOTS).Cmd(byte(n)) })
	case document.LineFeed:
		w.Repeat(cmd.LINE_FEED[0], o.Lines)
	case document.UnitFeed:
		wire.Chunks(o.Dots, 255, func(n int) { w.Bytes(cmd.FEED_DOTS).Cmd(byte(n)) })
	case document.LineSpace:
		w.Bytes(cmd.LINE_SPACING).Cmd(byte(wire.Clamp(o.Dots, 0, 255)))
	case document.CharacterSpace:
		w.Bytes(cmd.CHAR_SPACING).Cmd(byte(wire.Clamp(o.Dots, 0, 255)))
	case document.Font:
		font := byte(0)
		if o.Style == model.FontB {
			font = 1
		}
		w.Bytes(cmd.FONT).Cmd(font)
	case document.Drawer:
		if o.Channel == model.PeripheralNo2 {
			w.Bytes(cmd.DRAWER_KICK_PIN5)
		} else {
			w.Bytes(cmd.DRAWER_KICK_PIN2)
		}
	case document.AbsolutePosition:
		w.Bytes(cmd.ABSOLUTE_POS).U16(wire.Clamp(o.Dots, 0, 0xFFFF))
	case document.TabPositions:
		w.Bytes(cmd.TAB_POSITIONS)
		for _, col := range o.Columns {
			w.Cmd(byte(wire.Clamp(col, 1, 255)))
		}
		w.Cmd(0x00)
	case document.Logo:
		w.Bytes(cmd.PRINT_LOGO).Cmd(byte(wire.Clamp(o.KeyCode, 1, 255)), logoSizes[o.Size])
	default:
		return wire.ErrUnsupportedOp
	}
	return nil
}

func (e *Encoder) barcode(w *wire.Writer, o document.Barcode) error {
	cmd := ESC_POS_COMMANDS

	system, ok := barcodeSystems[o.Symbology]
	if !ok {
		return wire.ErrUnsupportedOp
	}
	data := []byte(o.Data)
	if o.Symbology == model.SymbologyCode128 {
		// code set B
		data = append([]byte("{B"), data...)
	}
	if len(data) > wire.MaxBarcodeData {
		return fmt.Errorf("%w: barcode payload is %d bytes", wire.ErrInvalidPayload, len(data))
	}

	hri := byte(0)
	if o.HRI {
		hri = 2
	}

	w.Bytes(cmd.BARCODE_HEIGHT).Cmd(byte(wire.Clamp(o.HeightDots, 1, 255)))
	w.Bytes(cmd.BARCODE_WIDTH).Cmd(byte(wire.Clamp(o.ModuleDots, 2, 6)))
	w.Bytes(cmd.BARCODE_HRI).Cmd(hri)
	w.Bytes(cmd.BARCODE_PRINT).Cmd(system, byte(len(data))).Bytes(data)
	w.Bytes(cmd.LINE_FEED)
	return nil
}

func (e *Encoder) qrCode(w *wire.Writer, o document.QRCode) {
	fn := func(body ...byte) {
		w.Bytes(ESC_POS_COMMANDS.QR_CODE_FUNC).U16(len(body)).Cmd(body...)
	}

	qrModel := byte(50)
	if o.Model == model.QrModel1 {
		qrModel = 49
	}
	level, ok := qrLevels[o.Level]
	if !ok {
		level = qrLevels[model.QrLevelH]
	}

	fn(0x31, 0x41, qrModel, 0x00)
	fn(0x31, 0x43, byte(wire.Clamp(o.Cell, 1, 16)))
	fn(0x31, 0x45, level)
	fn(append([]byte{0x31, 0x50, 0x30}, []byte(o.Data)...)...)
	fn(0x31, 0x51, 0x30)
}

func raster(w *wire.Writer, bm wire.Bitmap) {
	if bm.Width == 0 || bm.Height == 0 {
		return
	}
	w.Bytes(ESC_POS_COMMANDS.RASTER_IMAGE).U16(bm.Stride).U16(bm.Height).Bytes(bm.Data)
}

func cut(mode model.CutMode) []byte {
	switch mode {
	case model.CutFullDirect:
		return ESC_POS_COMMANDS.CUT_FULL
	case model.CutPartialDirect:
		return ESC_POS_COMMANDS.CUT_PARTIAL
	case model.CutFull:
		return ESC_POS_COMMANDS.CUT_FULL_FEED
	default:
		return ESC_POS_COMMANDS.CUT_PARTIAL_FEED
	}
}

func alignment(a model.Alignment) byte {
	switch a {
	case model.AlignCenter:
		return 1
	case model.AlignRight:
		return 2
	default:
		return 0
	}
}

func flag(on bool) byte {
	if on {
		return 1
	}
	return 0
}
