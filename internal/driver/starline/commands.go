// internal/driver/starline/commands.go
package starline

import (
	"github.com/shopspring/decimal"

	"printer-bridge/internal/model"
)

// STAR_LINE_COMMANDS contains the fixed Star Line Mode command prefixes
var STAR_LINE_COMMANDS = struct {
	// Basic commands
	INITIALIZE     []byte
	STATUS_REQUEST []byte

	// Text formatting
	BOLD_ON       []byte
	BOLD_OFF      []byte
	UNDERLINE     []byte // + 0/1
	INVERT_ON     []byte
	INVERT_OFF    []byte
	MAGNIFICATION []byte // + h-1 w-1
	FONT          []byte // + 0 A, 1 B
	CHAR_SPACING  []byte // + dots
	LINE_PITCH    []byte // + 0 3mm, 1 4mm

	// Positioning
	ALIGN         []byte // + 0 left, 1 center, 2 right
	ABSOLUTE_POS  []byte // + nL nH
	TAB_POSITIONS []byte // + columns, NUL

	// Character sets
	INTERNATIONAL []byte // + n
	CODE_PAGE     []byte // + n

	// Paper handling
	LINE_FEED  []byte
	FEED_UNITS []byte // + n quarter millimetres
	CUT        []byte // + 0..3
	BLACK_MARK []byte // + n

	// Cash drawer
	DRAWER_CHANNEL1 []byte
	DRAWER_CHANNEL2 []byte

	// Graphics and barcodes
	PRINT_LOGO   []byte // + n m
	RASTER_ENTER []byte
	RASTER_LINE  []byte // + nL nH data
	RASTER_EXIT  []byte
	BARCODE      []byte // + n1 n2 n3 n4 data RS
	QR_SETTING   []byte // + fn n
	QR_DATA      []byte // + 1 0 nL nH data
	QR_PRINT     []byte
}{
	INITIALIZE:     []byte{0x1B, 0x40},       // ESC @
	STATUS_REQUEST: []byte{0x1B, 0x06, 0x01}, // ESC ACK SOH

	BOLD_ON:       []byte{0x1B, 0x45},       // ESC E
	BOLD_OFF:      []byte{0x1B, 0x46},       // ESC F
	UNDERLINE:     []byte{0x1B, 0x2D},       // ESC -
	INVERT_ON:     []byte{0x1B, 0x34},       // ESC 4
	INVERT_OFF:    []byte{0x1B, 0x35},       // ESC 5
	MAGNIFICATION: []byte{0x1B, 0x69},       // ESC i
	FONT:          []byte{0x1B, 0x1E, 0x46}, // ESC RS F
	CHAR_SPACING:  []byte{0x1B, 0x20},       // ESC SP
	LINE_PITCH:    []byte{0x1B, 0x7A},       // ESC z

	ALIGN:         []byte{0x1B, 0x1D, 0x61}, // ESC GS a
	ABSOLUTE_POS:  []byte{0x1B, 0x1D, 0x41}, // ESC GS A
	TAB_POSITIONS: []byte{0x1B, 0x44},       // ESC D

	INTERNATIONAL: []byte{0x1B, 0x52},       // ESC R
	CODE_PAGE:     []byte{0x1B, 0x1D, 0x74}, // ESC GS t

	LINE_FEED:  []byte{0x0A},             // LF
	FEED_UNITS: []byte{0x1B, 0x4A},       // ESC J
	CUT:        []byte{0x1B, 0x64},       // ESC d
	BLACK_MARK: []byte{0x1B, 0x1E, 0x6D}, // ESC RS m

	DRAWER_CHANNEL1: []byte{0x07}, // BEL
	DRAWER_CHANNEL2: []byte{0x1A}, // SUB

	PRINT_LOGO:   []byte{0x1B, 0x1C, 0x70},       // ESC FS p
	RASTER_ENTER: []byte{0x1B, 0x2A, 0x72, 0x41}, // ESC * r A
	RASTER_LINE:  []byte{0x62},                   // b
	RASTER_EXIT:  []byte{0x1B, 0x2A, 0x72, 0x42}, // ESC * r B
	BARCODE:      []byte{0x1B, 0x62},             // ESC b
	QR_SETTING:   []byte{0x1B, 0x1D, 0x79, 0x53}, // ESC GS y S
	QR_DATA:      []byte{0x1B, 0x1D, 0x79, 0x44}, // ESC GS y D
	QR_PRINT:     []byte{0x1B, 0x1D, 0x79, 0x50}, // ESC GS y P
}

// quarter millimetre feed units per printed line at the default 4 mm pitch
var unitsPerLine = decimal.NewFromInt(16)

var internationalCodes = map[model.InternationalType]byte{
	model.InternationalUSA:          0,
	model.InternationalFrance:       1,
	model.InternationalGermany:      2,
	model.InternationalUK:           3,
	model.InternationalDenmark:      4,
	model.InternationalSweden:       5,
	model.InternationalItaly:        6,
	model.InternationalSpain:        7,
	model.InternationalJapan:        8,
	model.InternationalNorway:       9,
	model.InternationalDenmark2:     10,
	model.InternationalSpain2:       11,
	model.InternationalLatinAmerica: 12,
	model.InternationalKorea:        13,
	model.InternationalIreland:      14,
	model.InternationalLegal:        64,
}

func international(t model.InternationalType) byte {
	return internationalCodes[t]
}

var codePages = map[model.CodePage]byte{
	"CP998":  0,
	"CP437":  1,
	"CP932":  2,
	"CP858":  4,
	"CP852":  5,
	"CP860":  6,
	"CP861":  7,
	"CP863":  8,
	"CP865":  9,
	"CP866":  10,
	"CP855":  11,
	"CP857":  12,
	"CP862":  13,
	"CP864":  14,
	"CP737":  15,
	"CP851":  16,
	"CP869":  17,
	"CP928":  18,
	"CP772":  19,
	"CP774":  20,
	"CP874":  21,
	"CP1252": 32,
	"CP1250": 33,
	"CP1251": 34,
	"CP3840": 64,
	"CP3841": 65,
	"CP3843": 66,
	"CP3845": 68,
	"CP3846": 69,
	"CP3847": 70,
	"CP3848": 71,
	"CP1001": 72,
	"CP2001": 73,
	"CP3001": 74,
	"CP3002": 75,
	"CP3011": 76,
	"CP3012": 77,
	"CP3021": 78,
	"CP3041": 79,
	"Blank":  255,
}

var barcodeTypes = map[model.BarcodeSymbology]byte{
	model.SymbologyUPCE:    0,
	model.SymbologyUPCA:    1,
	model.SymbologyJAN8:    2,
	model.SymbologyJAN13:   3,
	model.SymbologyCode39:  4,
	model.SymbologyITF:     5,
	model.SymbologyCode128: 6,
	model.SymbologyCode93:  7,
	model.SymbologyNW7:     8,
}

var qrLevels = map[model.QrCodeLevel]byte{
	model.QrLevelL: 0,
	model.QrLevelM: 1,
	model.QrLevelQ: 2,
	model.QrLevelH: 3,
}

var logoSizes = map[model.LogoSize]byte{
	model.LogoNormal:                  0,
	model.LogoDoubleWidth:             1,
	model.LogoDoubleHeight:            2,
	model.LogoDoubleWidthDoubleHeight: 3,
}

var blackMarks = map[model.BlackMarkType]byte{
	model.BlackMarkInvalid:            0,
	model.BlackMarkValid:              1,
	model.BlackMarkValidWithDetection: 2,
}
