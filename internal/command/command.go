// internal/command/command.go

// Package command turns caller supplied descriptors into typed print commands.
//
// Parsing is strict: unknown actions, unknown print types and badly typed
// fields are errors. Value resolution for open option strings lives in
// package resolve, which is permissive.
package command

import (
	"github.com/shopspring/decimal"

	"printer-bridge/internal/model"
)

// Kind is the content type of a Print entry
type Kind string

const (
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindBarcode Kind = "barcode"
)

var kinds = map[string]Kind{
	string(KindText):    KindText,
	string(KindImage):   KindImage,
	string(KindBarcode): KindBarcode,
}

// ActionType is the device action of an Action entry
type ActionType string

const (
	ActionCut            ActionType = "cut"
	ActionPartialCut     ActionType = "partial-cut"
	ActionFullDirect     ActionType = "full-direct"
	ActionPartialDirect  ActionType = "partial-direct"
	ActionPaperFeed      ActionType = "paper-feed"
	ActionFeedLine       ActionType = "feed-line"
	ActionPrintRuledLine ActionType = "print-line-separator"
)

var actions = map[string]ActionType{
	string(ActionCut):            ActionCut,
	string(ActionPartialCut):     ActionPartialCut,
	string(ActionFullDirect):     ActionFullDirect,
	string(ActionPartialDirect):  ActionPartialDirect,
	string(ActionPaperFeed):      ActionPaperFeed,
	string(ActionFeedLine):       ActionFeedLine,
	string(ActionPrintRuledLine): ActionPrintRuledLine,
}

// Command is either a Print or an Action
type Command interface {
	isCommand()
}

// Print is a content entry
type Print struct {
	Data  string
	Kind  Kind
	Style *Style
}

func (Print) isCommand() {}

// Action is a device action entry with its resolved parameters
type Action struct {
	Type   ActionType
	Params Params
}

func (Action) isCommand() {}

// Params is the parameter set of one action type
type Params interface {
	isParams()
}

// CutParams carries the cut mode of every cut action
type CutParams struct {
	Mode model.CutMode
}

// PaperFeedParams feeds Height printer lines
type PaperFeedParams struct {
	Height decimal.Decimal
}

// FeedLineParams has no fields; a single line is fed
type FeedLineParams struct{}

// RuledLineParams describes a horizontal rule, all lengths in millimetres
type RuledLineParams struct {
	Width     decimal.Decimal
	Thickness decimal.Decimal
	XOffset   decimal.Decimal
	Style     model.LineStyle
}

func (CutParams) isParams()       {}
func (PaperFeedParams) isParams() {}
func (FeedLineParams) isParams()  {}
func (RuledLineParams) isParams() {}

var (
	DefaultPaperFeedHeight    = decimal.NewFromInt(1)
	DefaultRuledLineWidth     = decimal.NewFromInt(48)
	DefaultRuledLineThickness = decimal.RequireFromString("0.1")
)

var cutModes = map[ActionType]model.CutMode{
	ActionCut:           model.CutFull,
	ActionPartialCut:    model.CutPartial,
	ActionFullDirect:    model.CutFullDirect,
	ActionPartialDirect: model.CutPartialDirect,
}
