package wire

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printer-bridge/internal/model"
)

func TestEncodeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		encoding model.Encoding
		expected []byte
	}{
		{"ascii passthrough", "abc", model.EncodingASCII, []byte("abc")},
		{"ascii replaces", "café", model.EncodingASCII, []byte("caf?")},
		{"windows-1252", "café", model.EncodingWindows1252, []byte{'c', 'a', 'f', 0xE9}},
		{"windows-1252 unmappable", "a€б", model.EncodingWindows1252, []byte{'a', 0x80, '?'}},
		{"windows-1251", "да", model.EncodingWindows1251, []byte{0xE4, 0xE0}},
		{"utf-8 raw", "é", model.EncodingUTF8, []byte{0xC3, 0xA9}},
		{"shift-jis", "ア", model.EncodingShiftJIS, []byte{0x83, 0x41}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeText(tt.input, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestEncodeTextUnknownEncoding(t *testing.T) {
	_, err := EncodeText("x", "EBCDIC")
	assert.Error(t, err)
}

func TestRasterizeThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 100})
	img.SetGray(2, 0, color.Gray{Y: 200})
	img.SetGray(3, 0, color.Gray{Y: 255})

	bm := Rasterize(img, 0, 128, false, model.RotationNormal)
	assert.Equal(t, 4, bm.Width)
	assert.Equal(t, 1, bm.Height)
	assert.Equal(t, []byte{0xC0}, bm.Data)
}

func TestRasterizeScalesKeepingAspect(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 50))
	bm := Rasterize(img, 200, 128, false, model.RotationNormal)
	assert.Equal(t, 200, bm.Width)
	assert.Equal(t, 100, bm.Height)
	assert.Equal(t, 25, bm.Stride)
}

func TestRasterizeRotation(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 30, 10))
	bm := Rasterize(img, 0, 128, false, model.RotationRight90)
	assert.Equal(t, 10, bm.Width)
	assert.Equal(t, 30, bm.Height)
}

func TestRasterizeTransparentIsWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 1))
	bm := Rasterize(img, 8, 128, true, model.RotationNormal)
	assert.Equal(t, []byte{0x00}, bm.Data)
}

func TestRasterizeDiffusionMidGrey(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}

	bm := Rasterize(img, 16, 128, true, model.RotationNormal)
	black := 0
	for _, b := range bm.Data {
		for ; b != 0; b &= b - 1 {
			black++
		}
	}
	// roughly half the dots are set
	assert.InDelta(t, 128, black, 24)
}

func TestRule(t *testing.T) {
	bm := Rule(8, 1, 8, model.LineSingle)
	assert.Equal(t, 16, bm.Width)
	assert.Equal(t, []byte{0x00, 0xFF}, bm.Data)

	double := Rule(8, 2, 0, model.LineDouble)
	require.Equal(t, 6, double.Height)
	assert.Equal(t, []byte{0xFF}, double.Row(0))
	assert.Equal(t, []byte{0x00}, double.Row(2))
	assert.Equal(t, []byte{0x00}, double.Row(3))
	assert.Equal(t, []byte{0xFF}, double.Row(5))
}

func TestRuleWithoutWidthIsEmpty(t *testing.T) {
	for _, width := range []int{0, -10} {
		bm := Rule(width, 1, 0, model.LineSingle)
		assert.Zero(t, bm.Width)
		assert.Empty(t, bm.Data)
	}
}

func TestRasterBounds(t *testing.T) {
	rule := Rule(1_000_000, 1_000_000, 100, model.LineDouble)
	assert.Equal(t, MaxRasterDots, rule.Width)
	assert.LessOrEqual(t, rule.Height, MaxRasterDots)

	img := image.NewGray(image.Rect(0, 0, 10, 10))
	bm := Rasterize(img, 1_000_000, 128, false, model.RotationNormal)
	assert.Equal(t, MaxRasterDots, bm.Width)
	assert.Equal(t, MaxRasterDots, bm.Height)
}

func TestContrastBrightness(t *testing.T) {
	assert.Equal(t, byte(1), ContrastBrightness(model.ContrastMinus3))
	assert.Equal(t, byte(2), ContrastBrightness(model.ContrastDefault))
	assert.Equal(t, byte(4), ContrastBrightness(model.ContrastPlus3))
}

func TestWriter(t *testing.T) {
	w := &Writer{}
	w.Cmd(0x1B).U16(0x0102).Repeat(0x0A, 2)
	assert.Equal(t, 5, w.Len())
	assert.Equal(t, []byte{0x1B, 0x02, 0x01, 0x0A, 0x0A}, w.Result())

	var parts []int
	Chunks(600, 255, func(n int) { parts = append(parts, n) })
	assert.Equal(t, []int{255, 255, 90}, parts)
}
