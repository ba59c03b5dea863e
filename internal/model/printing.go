// internal/model/printing.go
package model

// Alignment is the horizontal position of printed content
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// CutMode selects how the paper is cut
type CutMode string

const (
	CutFull          CutMode = "full"
	CutPartial       CutMode = "partial"
	CutFullDirect    CutMode = "full-direct"
	CutPartialDirect CutMode = "partial-direct"
)

// CutPaperAction is the legacy cut selector
type CutPaperAction string

const (
	CutPaperFullCut            CutPaperAction = "FullCut"
	CutPaperFullCutWithFeed    CutPaperAction = "FullCutWithFeed"
	CutPaperPartialCut         CutPaperAction = "PartialCut"
	CutPaperPartialCutWithFeed CutPaperAction = "PartialCutWithFeed"
)

// CutMode maps the legacy action onto the cut modes understood by encoders
func (a CutPaperAction) CutMode() CutMode {
	switch a {
	case CutPaperFullCut:
		return CutFullDirect
	case CutPaperFullCutWithFeed:
		return CutFull
	case CutPaperPartialCut:
		return CutPartialDirect
	default:
		return CutPartial
	}
}

// LineStyle is the stroke of a ruled line
type LineStyle string

const (
	LineSingle LineStyle = "single"
	LineDouble LineStyle = "double"
)

// InternationalType selects the printer international character set
type InternationalType string

const (
	InternationalUSA          InternationalType = "usa"
	InternationalFrance       InternationalType = "france"
	InternationalGermany      InternationalType = "germany"
	InternationalUK           InternationalType = "uk"
	InternationalDenmark      InternationalType = "denmark"
	InternationalSweden       InternationalType = "sweden"
	InternationalItaly        InternationalType = "italy"
	InternationalSpain        InternationalType = "spain"
	InternationalJapan        InternationalType = "japan"
	InternationalNorway       InternationalType = "norway"
	InternationalDenmark2     InternationalType = "denmark2"
	InternationalSpain2       InternationalType = "spain2"
	InternationalLatinAmerica InternationalType = "latinAmerica"
	InternationalKorea        InternationalType = "korea"
	InternationalIreland      InternationalType = "ireland"
	InternationalSlovenia     InternationalType = "slovenia"
	InternationalCroatia      InternationalType = "croatia"
	InternationalChina        InternationalType = "china"
	InternationalVietnam      InternationalType = "vietnam"
	InternationalArabic       InternationalType = "arabic"
	InternationalLegal        InternationalType = "legal"
)

// BarcodeSymbology is the one-dimensional barcode type
type BarcodeSymbology string

const (
	SymbologyCode128 BarcodeSymbology = "Code128"
	SymbologyCode39  BarcodeSymbology = "Code39"
	SymbologyCode93  BarcodeSymbology = "Code93"
	SymbologyITF     BarcodeSymbology = "ITF"
	SymbologyJAN8    BarcodeSymbology = "JAN8"
	SymbologyJAN13   BarcodeSymbology = "JAN13"
	SymbologyNW7     BarcodeSymbology = "NW7"
	SymbologyUPCA    BarcodeSymbology = "UPCA"
	SymbologyUPCE    BarcodeSymbology = "UPCE"
)

// BarcodeWidth is the module width mode, Mode1 being the narrowest
type BarcodeWidth int

// QrCodeModel is the QR code model
type QrCodeModel int

const (
	QrModel1 QrCodeModel = 1
	QrModel2 QrCodeModel = 2
)

// QrCodeLevel is the QR error correction level
type QrCodeLevel string

const (
	QrLevelL QrCodeLevel = "L"
	QrLevelM QrCodeLevel = "M"
	QrLevelQ QrCodeLevel = "Q"
	QrLevelH QrCodeLevel = "H"
)

// CodePage names a printer code page table such as CP437 or UTF8
type CodePage string

const (
	CodePageDefault CodePage = "CP998"
	CodePageUTF8    CodePage = "UTF8"
	CodePageBlank   CodePage = "Blank"
)

// LogoSize is the magnification of a stored logo
type LogoSize string

const (
	LogoNormal                  LogoSize = "Normal"
	LogoDoubleWidth             LogoSize = "DoubleWidth"
	LogoDoubleHeight            LogoSize = "DoubleHeight"
	LogoDoubleWidthDoubleHeight LogoSize = "DoubleWidthDoubleHeight"
)

// BlackMarkType configures black mark detection
type BlackMarkType string

const (
	BlackMarkValid              BlackMarkType = "Valid"
	BlackMarkInvalid            BlackMarkType = "Invalid"
	BlackMarkValidWithDetection BlackMarkType = "ValidWithDetection"
)

// BitmapRotation rotates a bitmap before rasterizing
type BitmapRotation string

const (
	RotationNormal    BitmapRotation = "Normal"
	RotationLeft90    BitmapRotation = "Left90"
	RotationRight90   BitmapRotation = "Right90"
	RotationRotate180 BitmapRotation = "Rotate180"
)

// PeripheralChannel is the drawer kick connector
type PeripheralChannel int

const (
	PeripheralNo1 PeripheralChannel = 1
	PeripheralNo2 PeripheralChannel = 2
)

// FontStyle is the device font
type FontStyle string

const (
	FontA FontStyle = "A"
	FontB FontStyle = "B"
)

// Encoding is the byte encoding applied to text content
type Encoding string

const (
	EncodingASCII       Encoding = "US-ASCII"
	EncodingWindows1252 Encoding = "Windows-1252"
	EncodingShiftJIS    Encoding = "Shift-JIS"
	EncodingWindows1251 Encoding = "Windows-1251"
	EncodingGB2312      Encoding = "GB2312"
	EncodingBig5        Encoding = "Big5"
	EncodingUTF8        Encoding = "UTF-8"
)

// CursorState is the customer display cursor mode
type CursorState string

const (
	CursorOff   CursorState = "off"
	CursorOn    CursorState = "on"
	CursorBlink CursorState = "blink"
)

// Contrast is the customer display contrast step
type Contrast int

const (
	ContrastMinus3  Contrast = -3
	ContrastMinus2  Contrast = -2
	ContrastMinus1  Contrast = -1
	ContrastDefault Contrast = 0
	ContrastPlus1   Contrast = 1
	ContrastPlus2   Contrast = 2
	ContrastPlus3   Contrast = 3
)
