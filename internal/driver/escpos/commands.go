// internal/driver/escpos/commands.go
package escpos

import (
	"github.com/shopspring/decimal"

	"printer-bridge/internal/model"
)

// ESC_POS_COMMANDS contains the fixed ESC/POS command prefixes
var ESC_POS_COMMANDS = struct {
	// Basic commands
	INITIALIZE     []byte
	STATUS_REQUEST []byte

	// Text formatting
	TEXT_BOLD      []byte // + 0/1
	TEXT_UNDERLINE []byte // + 0/1
	TEXT_INVERT    []byte // + 0/1
	TEXT_SIZE      []byte // + (w-1)<<4 | (h-1)
	FONT           []byte // + 0 A, 1 B
	CHAR_SPACING   []byte // + dots
	LINE_SPACING   []byte // + dots

	// Positioning
	ALIGN         []byte // + 0 left, 1 center, 2 right
	ABSOLUTE_POS  []byte // + nL nH
	TAB_POSITIONS []byte // + columns, NUL

	// Character sets
	INTERNATIONAL []byte // + n
	CODE_PAGE     []byte // + n

	// Paper handling
	LINE_FEED  []byte
	FEED_LINES []byte // + n
	FEED_DOTS  []byte // + n

	// Cutting
	CUT_FULL_FEED    []byte
	CUT_PARTIAL_FEED []byte
	CUT_FULL         []byte
	CUT_PARTIAL      []byte

	// Cash drawer
	DRAWER_KICK_PIN2 []byte
	DRAWER_KICK_PIN5 []byte

	// Graphics and barcodes
	PRINT_LOGO     []byte // + n m
	RASTER_IMAGE   []byte // + m xL xH yL yH data
	BARCODE_HEIGHT []byte // + n
	BARCODE_WIDTH  []byte // + n
	BARCODE_HRI    []byte // + n
	BARCODE_PRINT  []byte // + m n data
	QR_CODE_FUNC   []byte // + pL pH cn fn ...
}{
	INITIALIZE:     []byte{0x1B, 0x40},
	STATUS_REQUEST: []byte{0x10, 0x04, 0x01, 0x10, 0x04, 0x02, 0x10, 0x04, 0x03, 0x10, 0x04, 0x04}, // DLE EOT 1..4

	TEXT_BOLD:      []byte{0x1B, 0x45}, // ESC E
	TEXT_UNDERLINE: []byte{0x1B, 0x2D}, // ESC -
	TEXT_INVERT:    []byte{0x1D, 0x42}, // GS B
	TEXT_SIZE:      []byte{0x1D, 0x21}, // GS !
	FONT:           []byte{0x1B, 0x4D}, // ESC M
	CHAR_SPACING:   []byte{0x1B, 0x20}, // ESC SP
	LINE_SPACING:   []byte{0x1B, 0x33}, // ESC 3

	ALIGN:         []byte{0x1B, 0x61}, // ESC a
	ABSOLUTE_POS:  []byte{0x1B, 0x24}, // ESC $
	TAB_POSITIONS: []byte{0x1B, 0x44}, // ESC D

	INTERNATIONAL: []byte{0x1B, 0x52}, // ESC R
	CODE_PAGE:     []byte{0x1B, 0x74}, // ESC t

	LINE_FEED:  []byte{0x0A},       // LF
	FEED_LINES: []byte{0x1B, 0x64}, // ESC d
	FEED_DOTS:  []byte{0x1B, 0x4A}, // ESC J

	CUT_FULL_FEED:    []byte{0x1D, 0x56, 0x41, 0x03}, // GS V A 3
	CUT_PARTIAL_FEED: []byte{0x1D, 0x56, 0x42, 0x03}, // GS V B 3
	CUT_FULL:         []byte{0x1D, 0x56, 0x00},       // GS V 0
	CUT_PARTIAL:      []byte{0x1D, 0x56, 0x01},       // GS V 1

	DRAWER_KICK_PIN2: []byte{0x1B, 0x70, 0x00, 0x19, 0x19}, // ESC p 0 25 25
	DRAWER_KICK_PIN5: []byte{0x1B, 0x70, 0x01, 0x19, 0x19}, // ESC p 1 25 25

	PRINT_LOGO:     []byte{0x1C, 0x70},             // FS p
	RASTER_IMAGE:   []byte{0x1D, 0x76, 0x30, 0x00}, // GS v 0 0
	BARCODE_HEIGHT: []byte{0x1D, 0x68},             // GS h
	BARCODE_WIDTH:  []byte{0x1D, 0x77},             // GS w
	BARCODE_HRI:    []byte{0x1D, 0x48},             // GS H
	BARCODE_PRINT:  []byte{0x1D, 0x6B},             // GS k
	QR_CODE_FUNC:   []byte{0x1D, 0x28, 0x6B},       // GS ( k
}

// feedLineDots is the default line pitch, 1/6 inch at 180 dpi
const feedLineDots = 30

var decimalLineDots = decimal.NewFromInt(feedLineDots)

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
	model.InternationalSlovenia:     14,
	model.InternationalCroatia:      14,
	model.InternationalChina:        15,
	model.InternationalVietnam:      16,
	model.InternationalArabic:       17,
}

func international(t model.InternationalType) byte {
	return internationalCodes[t]
}

var codePages = map[model.CodePage]byte{
	"CP998":  0,
	"CP437":  0,
	"CP932":  1,
	"CP850":  2,
	"CP860":  3,
	"CP863":  4,
	"CP865":  5,
	"CP851":  11,
	"CP857":  13,
	"CP737":  14,
	"CP1252": 16,
	"CP866":  17,
	"CP852":  18,
	"CP858":  19,
	"CP862":  36,
	"CP864":  37,
	"CP1250": 45,
	"CP1251": 46,
}

var barcodeSystems = map[model.BarcodeSymbology]byte{
	model.SymbologyUPCA:    65,
	model.SymbologyUPCE:    66,
	model.SymbologyJAN13:   67,
	model.SymbologyJAN8:    68,
	model.SymbologyCode39:  69,
	model.SymbologyITF:     70,
	model.SymbologyNW7:     71,
	model.SymbologyCode93:  72,
	model.SymbologyCode128: 73,
}

var qrLevels = map[model.QrCodeLevel]byte{
	model.QrLevelL: 48,
	model.QrLevelM: 49,
	model.QrLevelQ: 50,
	model.QrLevelH: 51,
}

var logoSizes = map[model.LogoSize]byte{
	model.LogoNormal:                  0,
	model.LogoDoubleWidth:             1,
	model.LogoDoubleHeight:            2,
	model.LogoDoubleWidthDoubleHeight: 3,
}
