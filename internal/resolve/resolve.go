// internal/resolve/resolve.go

// Package resolve maps open string options onto device parameters.
// Every resolver is total: input it does not recognize yields the
// documented default instead of an error, so newer callers can send
// values older builds do not know yet.
package resolve

import (
	"strings"

	"printer-bridge/internal/model"
)

// lookup returns the table entry for value, matched case-insensitively, or def
func lookup[T any](table map[string]T, value string, def T) T {
	if v, ok := table[strings.ToLower(strings.TrimSpace(value))]; ok {
		return v
	}
	return def
}

var alignments = map[string]model.Alignment{
	"left":   model.AlignLeft,
	"center": model.AlignCenter,
	"right":  model.AlignRight,
}

// Alignment resolves left, center or right. Default Left.
func Alignment(value string) model.Alignment {
	return lookup(alignments, value, model.AlignLeft)
}

var lineStyles = map[string]model.LineStyle{
	"single": model.LineSingle,
	"double": model.LineDouble,
}

// LineStyle resolves single or double. Default Single.
func LineStyle(value string) model.LineStyle {
	return lookup(lineStyles, value, model.LineSingle)
}

var symbologies = map[string]model.BarcodeSymbology{
	"code128": model.SymbologyCode128,
	"code39":  model.SymbologyCode39,
	"code93":  model.SymbologyCode93,
	"itf":     model.SymbologyITF,
	"jan8":    model.SymbologyJAN8,
	"jan13":   model.SymbologyJAN13,
	"nw7":     model.SymbologyNW7,
	"upca":    model.SymbologyUPCA,
	"upce":    model.SymbologyUPCE,
}

// BarcodeSymbology resolves a symbology name. Default Code128.
func BarcodeSymbology(value string) model.BarcodeSymbology {
	return lookup(symbologies, value, model.SymbologyCode128)
}

var barcodeWidths = map[string]model.BarcodeWidth{
	"mode1": 1, "mode2": 2, "mode3": 3,
	"mode4": 4, "mode5": 5, "mode6": 6,
	"mode7": 7, "mode8": 8, "mode9": 9,
}

// BarcodeWidth resolves Mode1 through Mode9. Default Mode2.
func BarcodeWidth(value string) model.BarcodeWidth {
	return lookup(barcodeWidths, value, model.BarcodeWidth(2))
}

var qrModels = map[string]model.QrCodeModel{
	"no1": model.QrModel1,
	"no2": model.QrModel2,
}

// QrCodeModel resolves No1 or No2. Default No1.
func QrCodeModel(value string) model.QrCodeModel {
	return lookup(qrModels, value, model.QrModel1)
}

var qrLevels = map[string]model.QrCodeLevel{
	"l": model.QrLevelL,
	"m": model.QrLevelM,
	"q": model.QrLevelQ,
	"h": model.QrLevelH,
}

// QrCodeLevel resolves L, M, Q or H. Default H.
func QrCodeLevel(value string) model.QrCodeLevel {
	return lookup(qrLevels, value, model.QrLevelH)
}

var logoSizes = map[string]model.LogoSize{
	"normal":                  model.LogoNormal,
	"doublewidth":             model.LogoDoubleWidth,
	"doubleheight":            model.LogoDoubleHeight,
	"doublewidthdoubleheight": model.LogoDoubleWidthDoubleHeight,
}

// LogoSize resolves a logo magnification. Default Normal.
func LogoSize(value string) model.LogoSize {
	return lookup(logoSizes, value, model.LogoNormal)
}

var cutPaperActions = map[string]model.CutPaperAction{
	"fullcut":            model.CutPaperFullCut,
	"fullcutwithfeed":    model.CutPaperFullCutWithFeed,
	"partialcut":         model.CutPaperPartialCut,
	"partialcutwithfeed": model.CutPaperPartialCutWithFeed,
}

// CutPaperAction resolves a legacy cut action. Default PartialCutWithFeed.
func CutPaperAction(value string) model.CutPaperAction {
	return lookup(cutPaperActions, value, model.CutPaperPartialCutWithFeed)
}

var blackMarks = map[string]model.BlackMarkType{
	"valid":              model.BlackMarkValid,
	"invalid":            model.BlackMarkInvalid,
	"validwithdetection": model.BlackMarkValidWithDetection,
}

// BlackMarkType resolves a black mark mode. Default Valid.
func BlackMarkType(value string) model.BlackMarkType {
	return lookup(blackMarks, value, model.BlackMarkValid)
}

var rotations = map[string]model.BitmapRotation{
	"normal":    model.RotationNormal,
	"left90":    model.RotationLeft90,
	"right90":   model.RotationRight90,
	"rotate180": model.RotationRotate180,
}

// BitmapRotation resolves a bitmap rotation. Default Normal.
func BitmapRotation(value string) model.BitmapRotation {
	return lookup(rotations, value, model.RotationNormal)
}

// PeripheralChannel resolves drawer connector 1 or 2. Default No1.
func PeripheralChannel(value int) model.PeripheralChannel {
	if value == int(model.PeripheralNo2) {
		return model.PeripheralNo2
	}
	return model.PeripheralNo1
}

var fontStyles = map[string]model.FontStyle{
	"a": model.FontA,
	"b": model.FontB,
}

// FontStyle resolves font A or B. Default A.
func FontStyle(value string) model.FontStyle {
	return lookup(fontStyles, value, model.FontA)
}

var encodings = map[string]model.Encoding{
	"us-ascii":     model.EncodingASCII,
	"windows-1252": model.EncodingWindows1252,
	"shift-jis":    model.EncodingShiftJIS,
	"windows-1251": model.EncodingWindows1251,
	"gb2312":       model.EncodingGB2312,
	"big5":         model.EncodingBig5,
	"utf-8":        model.EncodingUTF8,
}

// Encoding resolves a text encoding name. Default US-ASCII.
func Encoding(value string) model.Encoding {
	return lookup(encodings, value, model.EncodingASCII)
}

var codePages = func() map[string]model.CodePage {
	names := []string{
		"CP437", "CP737", "CP772", "CP774", "CP851", "CP852", "CP855", "CP857",
		"CP858", "CP860", "CP861", "CP862", "CP863", "CP864", "CP865", "CP866",
		"CP869", "CP874", "CP928", "CP932", "CP998", "CP999", "CP1001", "CP1250",
		"CP1251", "CP1252", "CP2001", "CP3001", "CP3002", "CP3011", "CP3012",
		"CP3021", "CP3041", "CP3840", "CP3841", "CP3843", "CP3845", "CP3846",
		"CP3847", "CP3848", "UTF8", "Blank",
	}
	table := make(map[string]model.CodePage, len(names))
	for _, name := range names {
		table[strings.ToLower(name)] = model.CodePage(name)
	}
	return table
}()

// CodePage resolves a code page name. Default CP998.
func CodePage(value string) model.CodePage {
	return lookup(codePages, value, model.CodePageDefault)
}

var emulations = map[string]model.Emulation{
	"escpos":       model.EmulationEscPos,
	"escposmobile": model.EmulationEscPos,
	"mini":         model.EmulationEscPos,
	"starprnt":     model.EmulationStarLine,
	"starline":     model.EmulationStarLine,
	"star":         model.EmulationStarLine,
}

// Emulation resolves an emulation name. Default starline.
func Emulation(value string) model.Emulation {
	return lookup(emulations, value, model.EmulationStarLine)
}
