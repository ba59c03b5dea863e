package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"printer-bridge/internal/model"
)

func TestAlignmentFallsBackToLeft(t *testing.T) {
	assert.Equal(t, model.AlignLeft, Alignment("left"))
	assert.Equal(t, model.AlignCenter, Alignment("Center"))
	assert.Equal(t, model.AlignRight, Alignment("RIGHT"))
	assert.Equal(t, model.AlignLeft, Alignment("bogus"))
	assert.Equal(t, model.AlignLeft, Alignment(""))
}

func TestResolverDefaults(t *testing.T) {
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"symbology", BarcodeSymbology("qr"), model.SymbologyCode128},
		{"barcode width", BarcodeWidth("Mode42"), model.BarcodeWidth(2)},
		{"qr model", QrCodeModel("No3"), model.QrModel1},
		{"qr level", QrCodeLevel("Z"), model.QrLevelH},
		{"code page", CodePage("CP0"), model.CodePageDefault},
		{"international", International("atlantis"), model.InternationalUSA},
		{"cut paper", CutPaperAction("snip"), model.CutPaperPartialCutWithFeed},
		{"logo size", LogoSize("huge"), model.LogoNormal},
		{"black mark", BlackMarkType("grey"), model.BlackMarkValid},
		{"rotation", BitmapRotation("Left45"), model.RotationNormal},
		{"peripheral", PeripheralChannel(7), model.PeripheralNo1},
		{"font", FontStyle("C"), model.FontA},
		{"encoding", Encoding("EBCDIC"), model.EncodingASCII},
		{"cursor", CursorState("flashing"), model.CursorOff},
		{"line style", LineStyle("dotted"), model.LineSingle},
		{"emulation", Emulation("zpl"), model.EmulationStarLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestResolverKnownValues(t *testing.T) {
	assert.Equal(t, model.SymbologyJAN13, BarcodeSymbology("jan13"))
	assert.Equal(t, model.BarcodeWidth(5), BarcodeWidth("Mode5"))
	assert.Equal(t, model.QrModel2, QrCodeModel("No2"))
	assert.Equal(t, model.QrLevelL, QrCodeLevel("l"))
	assert.Equal(t, model.CodePage("CP865"), CodePage("cp865"))
	assert.Equal(t, model.CodePageUTF8, CodePage("UTF8"))
	assert.Equal(t, model.InternationalLatinAmerica, International("LatinAmerica"))
	assert.Equal(t, model.InternationalLatinAmerica, International("latinAmerica"))
	assert.Equal(t, model.CutPaperFullCut, CutPaperAction("FullCut"))
	assert.Equal(t, model.PeripheralNo2, PeripheralChannel(2))
	assert.Equal(t, model.FontB, FontStyle("b"))
	assert.Equal(t, model.EncodingShiftJIS, Encoding("Shift-JIS"))
	assert.Equal(t, model.CursorBlink, CursorState("blink"))
	assert.Equal(t, model.LineDouble, LineStyle("DOUBLE"))
	assert.Equal(t, model.EmulationEscPos, Emulation("EscPosMobile"))
	assert.Equal(t, model.EmulationStarLine, Emulation("StarPRNT"))
}

func TestDisplayInternationalStopsAtKorea(t *testing.T) {
	assert.Equal(t, model.InternationalKorea, DisplayInternational("korea"))
	assert.Equal(t, model.InternationalUSA, DisplayInternational("vietnam"))
	assert.Equal(t, model.InternationalVietnam, International("vietnam"))
}

func TestContrastRange(t *testing.T) {
	for v := -3; v <= 3; v++ {
		assert.Equal(t, model.Contrast(v), Contrast(v))
	}
	assert.Equal(t, model.ContrastDefault, Contrast(-4))
	assert.Equal(t, model.ContrastDefault, Contrast(4))
}
