// internal/document/units.go
package document

import (
	"github.com/shopspring/decimal"
)

// DefaultDotsPerMM is the resolution of a 203 dpi thermal head
var DefaultDotsPerMM = decimal.NewFromInt(8)

// MMToDots converts millimetres to whole dots, rounding half away from zero
func MMToDots(mm, dotsPerMM decimal.Decimal) int {
	return int(mm.Mul(dotsPerMM).Round(0).IntPart())
}

// PrintableDots maps a detected paper width in millimetres to the printable
// width in dots. Roll widths with a known printable area use it, anything
// else is converted directly.
func PrintableDots(paperWidthMM int, dotsPerMM decimal.Decimal) int {
	switch paperWidthMM {
	case 80:
		return MMToDots(decimal.NewFromInt(72), dotsPerMM)
	case 58:
		return MMToDots(decimal.NewFromInt(48), dotsPerMM)
	default:
		return MMToDots(decimal.NewFromInt(int64(paperWidthMM)), dotsPerMM)
	}
}
