// internal/driver/starline/encoder.go

// Package starline encodes documents for printers in Star Line Mode.
package starline

import (
	"fmt"
	"strings"

	"printer-bridge/internal/document"
	"printer-bridge/internal/driver/wire"
	"printer-bridge/internal/model"
)

// Encoder produces Star Line Mode byte streams
type Encoder struct{}

// New creates a Star Line Mode encoder
func New() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Emulation() model.Emulation {
	return model.EmulationStarLine
}

// Encode serializes the buffer after a printer reset
func (e *Encoder) Encode(buf document.Buffer) ([]byte, error) {
	w := &wire.Writer{}
	w.Bytes(STAR_LINE_COMMANDS.INITIALIZE)
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
	cmd := STAR_LINE_COMMANDS

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
		if o.On {
			w.Bytes(cmd.BOLD_ON)
		} else {
			w.Bytes(cmd.BOLD_OFF)
		}
	case document.Underline:
		w.Bytes(cmd.UNDERLINE).Cmd(flag(o.On))
	case document.Invert:
		if o.On {
			w.Bytes(cmd.INVERT_ON)
		} else {
			w.Bytes(cmd.INVERT_OFF)
		}
	case document.Magnification:
		height := wire.Clamp(o.Height, 1, 6) - 1
		width := wire.Clamp(o.Width, 1, 6) - 1
		w.Bytes(cmd.MAGNIFICATION).Cmd(byte(height), byte(width))
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
		w.Bytes(cmd.CUT).Cmd(cut(o.Mode))
	case document.Feed:
		units := int(o.Lines.Mul(unitsPerLine).Round(0).IntPart())
		wire.Chunks(units, 255, func(n int) { w.Bytes(cmd.FEED_UNITS).Cmd(byte(n)) })
	case document.LineFeed:
		w.Repeat(cmd.LINE_FEED[0], o.Lines)
	case document.UnitFeed:
		// feed units are 1/4 mm, two dots at 8 dots/mm
		units := (o.Dots + 1) / 2
		wire.Chunks(units, 255, func(n int) { w.Bytes(cmd.FEED_UNITS).Cmd(byte(n)) })
	case document.LineSpace:
		pitch := byte(1)
		if o.Dots <= 24 {
			pitch = 0
		}
		w.Bytes(cmd.LINE_PITCH).Cmd(pitch)
	case document.CharacterSpace:
		w.Bytes(cmd.CHAR_SPACING).Cmd(byte(wire.Clamp(o.Dots, 0, 15)))
	case document.Font:
		font := byte(0)
		if o.Style == model.FontB {
			font = 1
		}
		w.Bytes(cmd.FONT).Cmd(font)
	case document.Drawer:
		if o.Channel == model.PeripheralNo2 {
			w.Bytes(cmd.DRAWER_CHANNEL2)
		} else {
			w.Bytes(cmd.DRAWER_CHANNEL1)
		}
	case document.BlackMark:
		w.Bytes(cmd.BLACK_MARK).Cmd(blackMarks[o.Type])
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
	kind, ok := barcodeTypes[o.Symbology]
	if !ok {
		return wire.ErrUnsupportedOp
	}

	// the payload is terminated by RS, so it must not contain one
	if len(o.Data) > wire.MaxBarcodeData {
		return fmt.Errorf("%w: barcode payload is %d bytes", wire.ErrInvalidPayload, len(o.Data))
	}
	if strings.IndexByte(o.Data, 0x1E) >= 0 {
		return fmt.Errorf("%w: barcode payload contains a record separator", wire.ErrInvalidPayload)
	}

	// n2: 1 no HRI, 2 HRI below
	hri := byte(1)
	if o.HRI {
		hri = 2
	}
	// n3: module width mode, 1..3 for the linear symbologies
	mode := byte(wire.Clamp(o.ModuleDots-1, 1, 3))

	w.Bytes(STAR_LINE_COMMANDS.BARCODE).
		Cmd(kind, hri, mode, byte(wire.Clamp(o.HeightDots, 1, 255))).
		Bytes([]byte(o.Data)).
		Cmd(0x1E)
	return nil
}

func (e *Encoder) qrCode(w *wire.Writer, o document.QRCode) {
	cmd := STAR_LINE_COMMANDS

	qrModel := byte(2)
	if o.Model == model.QrModel1 {
		qrModel = 1
	}
	level, ok := qrLevels[o.Level]
	if !ok {
		level = qrLevels[model.QrLevelH]
	}

	w.Bytes(cmd.QR_SETTING).Cmd(0x30, qrModel)
	w.Bytes(cmd.QR_SETTING).Cmd(0x31, level)
	w.Bytes(cmd.QR_SETTING).Cmd(0x32, byte(wire.Clamp(o.Cell, 1, 8)))
	w.Bytes(cmd.QR_DATA).Cmd(0x31, 0x00).U16(len(o.Data)).Bytes([]byte(o.Data))
	w.Bytes(cmd.QR_PRINT)
}

func raster(w *wire.Writer, bm wire.Bitmap) {
	if bm.Width == 0 || bm.Height == 0 {
		return
	}
	cmd := STAR_LINE_COMMANDS
	w.Bytes(cmd.RASTER_ENTER)
	for y := 0; y < bm.Height; y++ {
		w.Bytes(cmd.RASTER_LINE).U16(bm.Stride).Bytes(bm.Row(y))
	}
	w.Bytes(cmd.RASTER_EXIT)
}

func cut(mode model.CutMode) byte {
	switch mode {
	case model.CutFullDirect:
		return 0
	case model.CutPartialDirect:
		return 1
	case model.CutFull:
		return 2
	default:
		return 3
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
