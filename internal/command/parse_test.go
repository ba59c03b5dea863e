package command

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printer-bridge/internal/model"
)

func TestParsePrintDefaultsToText(t *testing.T) {
	cmd, err := Parse(map[string]interface{}{"data": "Hello"})
	require.NoError(t, err)

	p, ok := cmd.(Print)
	require.True(t, ok)
	assert.Equal(t, "Hello", p.Data)
	assert.Equal(t, KindText, p.Kind)
	assert.Nil(t, p.Style)
}

func TestParsePrintUnknownTypeFails(t *testing.T) {
	_, err := Parse(map[string]interface{}{"data": "Hello", "type": "hologram"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)

	var unknown *UnknownValueError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "hologram", unknown.Value)
}

func TestParsePrintKinds(t *testing.T) {
	for _, kind := range []Kind{KindText, KindImage, KindBarcode} {
		cmd, err := Parse(map[string]interface{}{"data": "x", "type": string(kind)})
		require.NoError(t, err)
		assert.Equal(t, kind, cmd.(Print).Kind)
	}
}

func TestParseMissingDataAndAction(t *testing.T) {
	_, err := Parse(map[string]interface{}{"style": map[string]interface{}{}})
	assert.ErrorIs(t, err, ErrMalformedCommand)

	_, err = Parse(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrMalformedCommand)
}

func TestParseUnknownAction(t *testing.T) {
	_, err := Parse(map[string]interface{}{"action": "explode"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.NotErrorIs(t, err, ErrMalformedCommand)
}

func TestParseDataWinsOverAction(t *testing.T) {
	cmd, err := Parse(map[string]interface{}{"data": "x", "action": "cut"})
	require.NoError(t, err)
	_, ok := cmd.(Print)
	assert.True(t, ok)
}

func TestParseCutFamily(t *testing.T) {
	tests := map[string]model.CutMode{
		"cut":            model.CutFull,
		"partial-cut":    model.CutPartial,
		"full-direct":    model.CutFullDirect,
		"partial-direct": model.CutPartialDirect,
	}
	for action, mode := range tests {
		t.Run(action, func(t *testing.T) {
			cmd, err := Parse(map[string]interface{}{"action": action})
			require.NoError(t, err)
			a := cmd.(Action)
			assert.Equal(t, CutParams{Mode: mode}, a.Params)
		})
	}
}

func TestParsePaperFeed(t *testing.T) {
	cmd, err := Parse(map[string]interface{}{"action": "paper-feed"})
	require.NoError(t, err)
	assert.True(t, cmd.(Action).Params.(PaperFeedParams).Height.Equal(decimal.NewFromInt(1)))

	cmd, err = Parse(map[string]interface{}{
		"action":          "paper-feed",
		"actionArguments": map[string]interface{}{"height": 2.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.5", cmd.(Action).Params.(PaperFeedParams).Height.String())

	cmd, err = Parse(map[string]interface{}{
		"action": "paper-feed",
		"args":   map[string]interface{}{"height": json.Number("3")},
	})
	require.NoError(t, err)
	assert.Equal(t, "3", cmd.(Action).Params.(PaperFeedParams).Height.String())
}

func TestParseRuledLineDefaults(t *testing.T) {
	cmd, err := Parse(map[string]interface{}{"action": "print-line-separator", "args": map[string]interface{}{}})
	require.NoError(t, err)

	params := cmd.(Action).Params.(RuledLineParams)
	assert.True(t, params.Width.Equal(decimal.NewFromInt(48)))
	assert.True(t, params.Thickness.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, params.XOffset.IsZero())
	assert.Equal(t, model.LineSingle, params.Style)
}

func TestParseRuledLineStyleCaseInsensitive(t *testing.T) {
	cmd, err := Parse(map[string]interface{}{
		"action":          "print-line-separator",
		"actionArguments": map[string]interface{}{"style": "Double", "width": 30.0, "xOffset": 2.0},
	})
	require.NoError(t, err)

	params := cmd.(Action).Params.(RuledLineParams)
	assert.Equal(t, model.LineDouble, params.Style)
	assert.Equal(t, "30", params.Width.String())
	assert.Equal(t, "2", params.XOffset.String())
}

func TestParseRuledLineRejectsNegativeArguments(t *testing.T) {
	for _, field := range []string{"width", "thickness", "xOffset"} {
		t.Run(field, func(t *testing.T) {
			_, err := Parse(map[string]interface{}{
				"action": "print-line-separator",
				"args":   map[string]interface{}{field: -10.0},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidField)

			var valueErr *FieldValueError
			require.ErrorAs(t, err, &valueErr)
			assert.Equal(t, field, valueErr.Field)
		})
	}
}

func TestParseArgsTypeMismatch(t *testing.T) {
	_, err := Parse(map[string]interface{}{
		"action": "paper-feed",
		"args":   map[string]interface{}{"height": "tall"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, "invalid height value type string", err.Error())
}

func TestParseStyle(t *testing.T) {
	cmd, err := Parse(map[string]interface{}{
		"data": "total",
		"style": map[string]interface{}{
			"align":          "center",
			"bold":           true,
			"widthExpansion": 2.0,
			"barWidth":       3.0,
			"underlined":     false,
		},
	})
	require.NoError(t, err)

	style := cmd.(Print).Style
	require.NotNil(t, style)
	assert.Equal(t, model.AlignCenter, *style.Align)
	assert.True(t, style.IsBold())
	assert.False(t, style.IsUnderlined())
	assert.Equal(t, 3, *style.BarWidth)
	assert.Nil(t, style.Threshold)
}

func TestParseStyleTypeMismatch(t *testing.T) {
	tests := []struct {
		field string
		value interface{}
		msg   string
	}{
		{"bold", "yes", "invalid bold value type string"},
		{"width", true, "invalid width value type bool"},
		{"align", 1.0, "invalid align value type float64"},
		{"underlined", 1.0, "invalid underlined value type float64"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := Parse(map[string]interface{}{
				"data":  "x",
				"style": map[string]interface{}{tt.field: tt.value},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidField)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestParseStyleRejectsUnknownAlign(t *testing.T) {
	_, err := Parse(map[string]interface{}{
		"data":  "x",
		"style": map[string]interface{}{"align": "justify"},
	})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestParseStyleRejectsNegativeExpansion(t *testing.T) {
	_, err := Parse(map[string]interface{}{
		"data":  "x",
		"style": map[string]interface{}{"heightExpansion": -1.0},
	})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestStyleMagnification(t *testing.T) {
	var none *Style
	w, h := none.Magnification()
	assert.Equal(t, [2]int{1, 1}, [2]int{w, h})

	two := 2
	w, h = (&Style{WidthExpansion: &two}).Magnification()
	assert.Equal(t, [2]int{3, 1}, [2]int{w, h})
}

func TestParseAllKeepsOrderAndReportsIndex(t *testing.T) {
	commands, err := ParseAll([]map[string]interface{}{
		{"data": "Hello", "type": "text"},
		{"action": "feed-line"},
		{"action": "cut"},
	})
	require.NoError(t, err)
	require.Len(t, commands, 3)
	assert.IsType(t, Print{}, commands[0])
	assert.Equal(t, ActionFeedLine, commands[1].(Action).Type)
	assert.Equal(t, ActionCut, commands[2].(Action).Type)

	_, err = ParseAll([]map[string]interface{}{
		{"data": "ok"},
		{"action": "nope"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command 1")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
