// internal/document/ops.go
package document

import (
	"image"

	"github.com/shopspring/decimal"

	"printer-bridge/internal/model"
)

// Op is a single vendor neutral builder operation
type Op interface {
	Name() string
}

// International selects the international character set
type International struct{ Type model.InternationalType }

// CodePage selects the code page used for subsequent text
type CodePage struct{ Page model.CodePage }

// Alignment sets the horizontal position of subsequent content
type Alignment struct{ Align model.Alignment }

// Emphasis toggles bold printing
type Emphasis struct{ On bool }

// Underline toggles underlined printing
type Underline struct{ On bool }

// Invert toggles white on black printing
type Invert struct{ On bool }

// Magnification sets the character size multiplier per axis
type Magnification struct{ Width, Height int }

// Text prints a string in the given encoding
type Text struct {
	Data     string
	Encoding model.Encoding
}

// Raw passes bytes through to the device untouched
type Raw struct{ Data []byte }

// Barcode prints a one-dimensional barcode
type Barcode struct {
	Data       string
	Symbology  model.BarcodeSymbology
	ModuleDots int
	HeightDots int
	HRI        bool
}

// QRCode prints a two-dimensional QR symbol
type QRCode struct {
	Data  string
	Model model.QrCodeModel
	Level model.QrCodeLevel
	Cell  int
}

// Image prints a bitmap scaled to WidthDots
type Image struct {
	Source    image.Image
	WidthDots int
	Diffusion bool
	Threshold int
	Rotation  model.BitmapRotation
}

// Cut cuts the paper
type Cut struct{ Mode model.CutMode }

// Feed advances the paper by a possibly fractional number of lines
type Feed struct{ Lines decimal.Decimal }

// LineFeed ends the current line and feeds Lines lines
type LineFeed struct{ Lines int }

// UnitFeed advances the paper by Dots dots
type UnitFeed struct{ Dots int }

// LineSpace sets the line pitch in dots
type LineSpace struct{ Dots int }

// CharacterSpace sets the extra spacing between characters in dots
type CharacterSpace struct{ Dots int }

// Font selects the device font
type Font struct{ Style model.FontStyle }

// RuledLine prints a horizontal rule
type RuledLine struct {
	WidthDots     int
	ThicknessDots int
	OffsetDots    int
	Style         model.LineStyle
}

// Drawer pulses the cash drawer kick connector
type Drawer struct{ Channel model.PeripheralChannel }

// BlackMark configures black mark sensing
type BlackMark struct{ Type model.BlackMarkType }

// AbsolutePosition moves the print head to Dots from the left margin
type AbsolutePosition struct{ Dots int }

// TabPositions sets horizontal tab stops in character columns
type TabPositions struct{ Columns []int }

// Logo prints a logo stored in printer memory
type Logo struct {
	KeyCode int
	Size    model.LogoSize
}

// DisplayClear clears the customer display
type DisplayClear struct{}

// DisplayText writes text on the customer display
type DisplayText struct{ Data string }

// DisplayCursor sets the customer display cursor mode
type DisplayCursor struct{ State model.CursorState }

// DisplayBacklight switches the customer display backlight
type DisplayBacklight struct{ On bool }

// DisplayContrast sets the customer display contrast step
type DisplayContrast struct{ Level model.Contrast }

// DisplayCharset selects the customer display character set
type DisplayCharset struct{ Type model.InternationalType }

func (International) Name() string    { return "international" }
func (CodePage) Name() string         { return "code_page" }
func (Alignment) Name() string        { return "alignment" }
func (Emphasis) Name() string         { return "emphasis" }
func (Underline) Name() string        { return "underline" }
func (Invert) Name() string           { return "invert" }
func (Magnification) Name() string    { return "magnification" }
func (Text) Name() string             { return "text" }
func (Raw) Name() string              { return "raw" }
func (Barcode) Name() string          { return "barcode" }
func (QRCode) Name() string           { return "qr_code" }
func (Image) Name() string            { return "image" }
func (Cut) Name() string              { return "cut" }
func (Feed) Name() string             { return "feed" }
func (LineFeed) Name() string         { return "line_feed" }
func (UnitFeed) Name() string         { return "unit_feed" }
func (LineSpace) Name() string        { return "line_space" }
func (CharacterSpace) Name() string   { return "character_space" }
func (Font) Name() string             { return "font" }
func (RuledLine) Name() string        { return "ruled_line" }
func (Drawer) Name() string           { return "drawer" }
func (BlackMark) Name() string        { return "black_mark" }
func (AbsolutePosition) Name() string { return "absolute_position" }
func (TabPositions) Name() string     { return "tab_positions" }
func (Logo) Name() string             { return "logo" }
func (DisplayClear) Name() string     { return "display_clear" }
func (DisplayText) Name() string      { return "display_text" }
func (DisplayCursor) Name() string    { return "display_cursor" }
func (DisplayBacklight) Name() string { return "display_backlight" }
func (DisplayContrast) Name() string  { return "display_contrast" }
func (DisplayCharset) Name() string   { return "display_charset" }
