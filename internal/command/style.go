// internal/command/style.go
package command

import (
	"printer-bridge/internal/model"
)

// Style holds the optional presentation fields of a Print entry.
// A nil field means the caller did not set it.
type Style struct {
	Align           *model.Alignment
	BarWidth        *int
	Bold            *bool
	Diffusion       *bool
	Threshold       *int
	Width           *int
	Height          *int
	HeightExpansion *int
	WidthExpansion  *int
	Underlined      *bool
}

var styleAlignments = map[string]model.Alignment{
	"left":   model.AlignLeft,
	"center": model.AlignCenter,
	"right":  model.AlignRight,
}

// Magnification returns the per-axis print size multiplier, expansion plus one
func (s *Style) Magnification() (width, height int) {
	width, height = 1, 1
	if s == nil {
		return
	}
	if s.WidthExpansion != nil {
		width += *s.WidthExpansion
	}
	if s.HeightExpansion != nil {
		height += *s.HeightExpansion
	}
	return
}

// IsBold reports the bold flag, false when unset
func (s *Style) IsBold() bool {
	return s != nil && s.Bold != nil && *s.Bold
}

// IsUnderlined reports the underline flag, false when unset
func (s *Style) IsUnderlined() bool {
	return s != nil && s.Underlined != nil && *s.Underlined
}

func parseStyle(raw map[string]interface{}) (*Style, error) {
	style := &Style{}

	if v, ok := raw["align"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, typeError("align", v)
		}
		align, ok := styleAlignments[s]
		if !ok {
			return nil, &UnknownValueError{Field: "align", Value: s, kind: ErrInvalidField}
		}
		style.Align = &align
	}

	ints := []struct {
		key         string
		dst         **int
		nonNegative bool
	}{
		{"barWidth", &style.BarWidth, true},
		{"threshold", &style.Threshold, false},
		{"width", &style.Width, true},
		{"height", &style.Height, true},
		{"heightExpansion", &style.HeightExpansion, true},
		{"widthExpansion", &style.WidthExpansion, true},
	}
	for _, f := range ints {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		n, err := toInt(f.key, v)
		if err != nil {
			return nil, err
		}
		if f.nonNegative && n < 0 {
			return nil, &FieldValueError{Field: f.key, Value: n}
		}
		*f.dst = &n
	}

	bools := []struct {
		key string
		dst **bool
	}{
		{"bold", &style.Bold},
		{"diffusion", &style.Diffusion},
		{"underlined", &style.Underlined},
	}
	for _, f := range bools {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return nil, typeError(f.key, v)
		}
		*f.dst = &b
	}

	return style, nil
}
