// internal/command/parse.go
package command

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"printer-bridge/internal/resolve"
)

// Parse converts one descriptor into a Command.
//
// A descriptor with a data key becomes a Print, otherwise one with an action
// key becomes an Action. Action arguments are read from actionArguments, or
// args as a fallback, and are resolved into typed Params here so later stages
// never look at the raw map again.
func Parse(descriptor map[string]interface{}) (Command, error) {
	if raw, ok := descriptor["data"]; ok && raw != nil {
		return parsePrint(raw, descriptor)
	}
	if raw, ok := descriptor["action"]; ok && raw != nil {
		return parseAction(raw, descriptor)
	}
	return nil, fmt.Errorf("%w: descriptor has neither data nor action", ErrMalformedCommand)
}

// ParseAll parses descriptors in order and stops at the first failure
func ParseAll(descriptors []map[string]interface{}) ([]Command, error) {
	commands := make([]Command, 0, len(descriptors))
	for i, d := range descriptors {
		cmd, err := Parse(d)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

func parsePrint(raw interface{}, descriptor map[string]interface{}) (Command, error) {
	data, ok := raw.(string)
	if !ok {
		return nil, typeError("data", raw)
	}

	p := Print{Data: data, Kind: KindText}

	if v, ok := descriptor["type"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, typeError("type", v)
		}
		kind, ok := kinds[s]
		if !ok {
			return nil, &UnknownValueError{Field: "type", Value: s, kind: ErrUnknownType}
		}
		p.Kind = kind
	}

	if v, ok := descriptor["style"]; ok && v != nil {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, typeError("style", v)
		}
		style, err := parseStyle(m)
		if err != nil {
			return nil, err
		}
		p.Style = style
	}

	return p, nil
}

func parseAction(raw interface{}, descriptor map[string]interface{}) (Command, error) {
	name, ok := raw.(string)
	if !ok {
		return nil, typeError("action", raw)
	}
	actionType, ok := actions[name]
	if !ok {
		return nil, &UnknownValueError{Field: "action", Value: name, kind: ErrUnknownAction}
	}

	args, err := actionArgs(descriptor)
	if err != nil {
		return nil, err
	}

	params, err := parseParams(actionType, args)
	if err != nil {
		return nil, err
	}
	return Action{Type: actionType, Params: params}, nil
}

func actionArgs(descriptor map[string]interface{}) (map[string]interface{}, error) {
	for _, key := range []string{"actionArguments", "args"} {
		v, ok := descriptor[key]
		if !ok || v == nil {
			continue
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, typeError(key, v)
		}
		return m, nil
	}
	return map[string]interface{}{}, nil
}

func parseParams(actionType ActionType, args map[string]interface{}) (Params, error) {
	switch actionType {
	case ActionCut, ActionPartialCut, ActionFullDirect, ActionPartialDirect:
		return CutParams{Mode: cutModes[actionType]}, nil

	case ActionPaperFeed:
		height, err := decimalArg(args, "height", DefaultPaperFeedHeight)
		if err != nil {
			return nil, err
		}
		if height.IsNegative() {
			return nil, &FieldValueError{Field: "height", Value: height.String()}
		}
		return PaperFeedParams{Height: height}, nil

	case ActionFeedLine:
		return FeedLineParams{}, nil

	case ActionPrintRuledLine:
		width, err := decimalArg(args, "width", DefaultRuledLineWidth)
		if err != nil {
			return nil, err
		}
		thickness, err := decimalArg(args, "thickness", DefaultRuledLineThickness)
		if err != nil {
			return nil, err
		}
		xOffset, err := decimalArg(args, "xOffset", decimal.Zero)
		if err != nil {
			return nil, err
		}
		for field, v := range map[string]decimal.Decimal{"width": width, "thickness": thickness, "xOffset": xOffset} {
			if v.IsNegative() {
				return nil, &FieldValueError{Field: field, Value: v.String()}
			}
		}
		params := RuledLineParams{
			Width:     width,
			Thickness: thickness,
			XOffset:   xOffset,
			Style:     resolve.LineStyle(""),
		}
		if v, ok := args["style"]; ok && v != nil {
			s, ok := v.(string)
			if !ok {
				return nil, typeError("style", v)
			}
			params.Style = resolve.LineStyle(s)
		}
		return params, nil
	}

	return nil, &UnknownValueError{Field: "action", Value: string(actionType), kind: ErrUnknownAction}
}

// toInt narrows a bridged number to int; JSON numbers arrive as float64
func toInt(field string, v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case float32:
		return int(n), nil
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, typeError(field, v)
		}
		return int(f), nil
	default:
		return 0, typeError(field, v)
	}
}

func decimalArg(args map[string]interface{}, key string, def decimal.Decimal) (decimal.Decimal, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, typeError(key, v)
		}
		return d, nil
	default:
		return decimal.Zero, typeError(key, v)
	}
}
