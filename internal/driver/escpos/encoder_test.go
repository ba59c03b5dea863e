package escpos

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printer-bridge/internal/document"
	"printer-bridge/internal/driver/wire"
	"printer-bridge/internal/model"
)

func encode(t *testing.T, ops ...document.Op) []byte {
	t.Helper()
	out, err := New().Encode(document.NewBuffer(ops...))
	require.NoError(t, err)
	return out
}

func TestEncodeHelloFeedCut(t *testing.T) {
	out := encode(t,
		document.International{Type: model.InternationalUSA},
		document.Text{Data: "Hello", Encoding: model.EncodingWindows1252},
		document.LineFeed{Lines: 1},
		document.Cut{Mode: model.CutFull},
	)

	expected := []byte{0x1B, 0x40, 0x1B, 0x52, 0x00}
	expected = append(expected, "Hello"...)
	expected = append(expected, 0x0A, 0x1D, 0x56, 0x41, 0x03)
	assert.Equal(t, expected, out)
}

func TestEncodeMagnification(t *testing.T) {
	out := encode(t, document.Magnification{Width: 2, Height: 3})
	assert.Equal(t, []byte{0x1B, 0x40, 0x1D, 0x21, 0x12}, out)

	out = encode(t, document.Magnification{Width: 20, Height: 0})
	assert.Equal(t, []byte{0x1B, 0x40, 0x1D, 0x21, 0x70}, out)
}

func TestEncodeCutModes(t *testing.T) {
	tests := []struct {
		mode     model.CutMode
		expected []byte
	}{
		{model.CutFull, []byte{0x1D, 0x56, 0x41, 0x03}},
		{model.CutPartial, []byte{0x1D, 0x56, 0x42, 0x03}},
		{model.CutFullDirect, []byte{0x1D, 0x56, 0x00}},
		{model.CutPartialDirect, []byte{0x1D, 0x56, 0x01}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			out := encode(t, document.Cut{Mode: tt.mode})
			assert.Equal(t, tt.expected, out[2:])
		})
	}
}

func TestEncodeStyleToggles(t *testing.T) {
	out := encode(t,
		document.Alignment{Align: model.AlignRight},
		document.Emphasis{On: true},
		document.Underline{On: false},
	)
	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x61, 0x02, 0x1B, 0x45, 0x01, 0x1B, 0x2D, 0x00}, out)
}

func TestEncodeFeedSplitsDots(t *testing.T) {
	// 10 lines of 30 dots = 300 dots
	out := encode(t, document.Feed{Lines: decimal.NewFromInt(10)})
	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x4A, 0xFF, 0x1B, 0x4A, 0x2D}, out)

	out = encode(t, document.Feed{Lines: decimal.RequireFromString("0.5")})
	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x4A, 0x0F}, out)
}

func TestEncodeBarcode(t *testing.T) {
	out := encode(t, document.Barcode{
		Data:       "123",
		Symbology:  model.SymbologyCode128,
		ModuleDots: 2,
		HeightDots: 40,
		HRI:        true,
	})

	expected := []byte{0x1B, 0x40,
		0x1D, 0x68, 40,
		0x1D, 0x77, 2,
		0x1D, 0x48, 2,
		0x1D, 0x6B, 73, 5, '{', 'B', '1', '2', '3',
		0x0A,
	}
	assert.Equal(t, expected, out)
}

func TestEncodeBarcodeRejectsOversizePayload(t *testing.T) {
	out, err := New().Encode(document.NewBuffer(document.Barcode{
		Data:       strings.Repeat("1", 300),
		Symbology:  model.SymbologyCode128,
		ModuleDots: 2,
		HeightDots: 40,
	}))
	assert.ErrorIs(t, err, wire.ErrInvalidPayload)
	assert.Nil(t, out)

	// 253 characters plus the code set selector fill the length byte exactly
	out = encode(t, document.Barcode{Data: strings.Repeat("1", 253), Symbology: model.SymbologyCode128})
	assert.Equal(t, []byte{0x1D, 0x6B, 73, 255, '{', 'B'}, out[11:17])
	assert.Len(t, out, 2+9+4+255+1)
}

func TestEncodeRuledLineWithoutWidth(t *testing.T) {
	out := encode(t, document.RuledLine{WidthDots: -80, ThicknessDots: 1, Style: model.LineSingle})
	assert.Equal(t, []byte{0x1B, 0x40}, out)
}

func TestEncodeQRCode(t *testing.T) {
	out := encode(t, document.QRCode{Data: "hi", Model: model.QrModel2, Level: model.QrLevelM, Cell: 4})

	expected := []byte{0x1B, 0x40,
		0x1D, 0x28, 0x6B, 4, 0, 0x31, 0x41, 50, 0,
		0x1D, 0x28, 0x6B, 3, 0, 0x31, 0x43, 4,
		0x1D, 0x28, 0x6B, 3, 0, 0x31, 0x45, 49,
		0x1D, 0x28, 0x6B, 5, 0, 0x31, 0x50, 0x30, 'h', 'i',
		0x1D, 0x28, 0x6B, 3, 0, 0x31, 0x51, 0x30,
	}
	assert.Equal(t, expected, out)
}

func TestEncodeImageRaster(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 2))
	for x := 0; x < 8; x++ {
		img.SetGray(x, 0, color.Gray{Y: 0})
		img.SetGray(x, 1, color.Gray{Y: 255})
	}

	out := encode(t, document.Image{Source: img, WidthDots: 8, Threshold: 128})
	expected := []byte{0x1B, 0x40, 0x1D, 0x76, 0x30, 0x00, 1, 0, 2, 0, 0xFF, 0x00}
	assert.Equal(t, expected, out)
}

func TestEncodeDisplayRunIsBracketed(t *testing.T) {
	out := encode(t,
		document.DisplayClear{},
		document.DisplayText{Data: "Hi"},
		document.Text{Data: "x", Encoding: model.EncodingASCII},
	)

	expected := []byte{0x1B, 0x40, 0x1B, 0x3D, 0x02, 0x0C, 'H', 'i', 0x1B, 0x3D, 0x01, 'x'}
	assert.Equal(t, expected, out)
}

func TestEncodeUnsupportedOp(t *testing.T) {
	_, err := New().Encode(document.NewBuffer(document.BlackMark{Type: model.BlackMarkValid}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, wire.ErrUnsupportedOp))
	assert.Contains(t, err.Error(), "black_mark")
}

func TestEncodeDrawer(t *testing.T) {
	out := encode(t, document.Drawer{Channel: model.PeripheralNo1})
	assert.Equal(t, []byte{0x1B, 0x40, 0x1B, 0x70, 0x00, 0x19, 0x19}, out)
}
