// internal/resolve/charset.go
package resolve

import (
	"strings"

	"printer-bridge/internal/model"
)

var printerInternational = func() map[string]model.InternationalType {
	types := []model.InternationalType{
		model.InternationalUSA, model.InternationalFrance, model.InternationalGermany,
		model.InternationalUK, model.InternationalDenmark, model.InternationalSweden,
		model.InternationalItaly, model.InternationalSpain, model.InternationalJapan,
		model.InternationalNorway, model.InternationalDenmark2, model.InternationalSpain2,
		model.InternationalLatinAmerica, model.InternationalKorea, model.InternationalIreland,
		model.InternationalSlovenia, model.InternationalCroatia, model.InternationalChina,
		model.InternationalVietnam, model.InternationalArabic, model.InternationalLegal,
	}
	table := make(map[string]model.InternationalType, len(types))
	for _, t := range types {
		table[strings.ToLower(string(t))] = t
	}
	return table
}()

// displayInternational is the subset a customer display supports; it stops at korea
var displayInternational = func() map[string]model.InternationalType {
	table := make(map[string]model.InternationalType)
	for _, t := range []model.InternationalType{
		model.InternationalUSA, model.InternationalFrance, model.InternationalGermany,
		model.InternationalUK, model.InternationalDenmark, model.InternationalSweden,
		model.InternationalItaly, model.InternationalSpain, model.InternationalJapan,
		model.InternationalNorway, model.InternationalDenmark2, model.InternationalSpain2,
		model.InternationalLatinAmerica, model.InternationalKorea,
	} {
		table[strings.ToLower(string(t))] = t
	}
	return table
}()

// International resolves a printer international character set.
// Both "latinAmerica" and the legacy "LatinAmerica" spellings match. Default USA.
func International(value string) model.InternationalType {
	return lookup(printerInternational, value, model.InternationalUSA)
}

// DisplayInternational resolves a customer display character set. Default USA.
func DisplayInternational(value string) model.InternationalType {
	return lookup(displayInternational, value, model.InternationalUSA)
}

var cursorStates = map[string]model.CursorState{
	"on":    model.CursorOn,
	"blink": model.CursorBlink,
}

// CursorState resolves on or blink. Anything else is Off.
func CursorState(value string) model.CursorState {
	return lookup(cursorStates, value, model.CursorOff)
}

// Contrast resolves a display contrast step in -3..3. Out of range is Default.
func Contrast(value int) model.Contrast {
	if value < int(model.ContrastMinus3) || value > int(model.ContrastPlus3) {
		return model.ContrastDefault
	}
	return model.Contrast(value)
}
