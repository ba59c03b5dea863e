// internal/document/document.go

// Package document accumulates parsed commands into an ordered, vendor
// neutral list of builder operations.
//
// A Document is single-owner: style state (alignment, emphasis,
// magnification, underline) is threaded through Apply calls in order and
// mode operations are only emitted when that state changes.
package document

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/shopspring/decimal"

	"printer-bridge/internal/command"
	"printer-bridge/internal/model"
)

var (
	// ErrFinalized is returned by Apply after Finalize
	ErrFinalized = errors.New("document already finalized")
	// ErrImageUnavailable is returned when an image entry cannot be acquired
	ErrImageUnavailable = errors.New("image unavailable")
)

// DefaultBarcodeHeightMM is the barcode height used when the style has none
const DefaultBarcodeHeightMM = 5

// DefaultBarcodeModuleDots is the barcode bar width used when the style has none
const DefaultBarcodeModuleDots = 2

// MaxBarcodeDataBytes is the longest barcode entry accepted. A Code128 code
// set selector takes two bytes of the 255 a barcode command carries.
const MaxBarcodeDataBytes = 253

// DefaultImageThreshold is the binarization cutoff used when the style has none
const DefaultImageThreshold = 128

// PaperWidthFunc returns the detected paper width in millimetres, or nil when
// the device does not report one
type PaperWidthFunc func(ctx context.Context) (*int, error)

// Options configures a Document
type Options struct {
	Charset    model.InternationalType
	DotsPerMM  decimal.Decimal
	Encoding   model.Encoding
	Images     ImageLoader
	PaperWidth PaperWidthFunc
}

// State is the style state threaded through Apply
type State struct {
	Charset       model.InternationalType
	Alignment     model.Alignment
	Bold          bool
	Underline     bool
	Magnification [2]int
}

// Document is the mutable accumulator of builder operations
type Document struct {
	opts      Options
	ops       []Op
	state     State
	finalized bool
}

// New creates a document and emits the international character set first
func New(opts Options) *Document {
	if opts.Charset == "" {
		opts.Charset = model.InternationalUSA
	}
	if opts.DotsPerMM.IsZero() {
		opts.DotsPerMM = DefaultDotsPerMM
	}
	if opts.Encoding == "" {
		opts.Encoding = model.EncodingWindows1252
	}

	d := &Document{
		opts: opts,
		state: State{
			Charset:       opts.Charset,
			Alignment:     model.AlignLeft,
			Magnification: [2]int{1, 1},
		},
	}
	d.ops = append(d.ops, International{Type: opts.Charset})
	return d
}

// State returns the current style state
func (d *Document) State() State {
	return d.state
}

// Ops returns a copy of the operations emitted so far
func (d *Document) Ops() []Op {
	cp := make([]Op, len(d.ops))
	copy(cp, d.ops)
	return cp
}

// Append adds raw operations, bypassing command translation
func (d *Document) Append(ops ...Op) *Document {
	d.ops = append(d.ops, ops...)
	return d
}

// Apply translates one command into operations and returns the same document
func (d *Document) Apply(ctx context.Context, cmd command.Command) (*Document, error) {
	if d.finalized {
		return d, ErrFinalized
	}

	switch c := cmd.(type) {
	case command.Print:
		return d, d.applyPrint(ctx, c)
	case command.Action:
		return d, d.applyAction(c)
	default:
		return d, fmt.Errorf("%w: unsupported command %T", command.ErrUnknownType, cmd)
	}
}

// ApplyAll applies commands in order, stopping at the first failure
func (d *Document) ApplyAll(ctx context.Context, commands []command.Command) (*Document, error) {
	for i, cmd := range commands {
		if _, err := d.Apply(ctx, cmd); err != nil {
			return d, fmt.Errorf("command %d: %w", i, err)
		}
	}
	return d, nil
}

// Finalize freezes the document into a buffer
func (d *Document) Finalize() Buffer {
	d.finalized = true
	return NewBuffer(d.ops...)
}

func (d *Document) applyPrint(ctx context.Context, p command.Print) error {
	if p.Data == "" {
		return fmt.Errorf("%w: %s entry has empty data", command.ErrMalformedCommand, p.Kind)
	}

	d.applyStyle(p.Style)

	switch p.Kind {
	case command.KindText:
		d.ops = append(d.ops, Text{Data: p.Data, Encoding: d.opts.Encoding})
		return nil
	case command.KindBarcode:
		op, err := d.barcodeOp(p)
		if err != nil {
			return err
		}
		d.ops = append(d.ops, op)
		return nil
	case command.KindImage:
		op, err := d.imageOp(ctx, p)
		if err != nil {
			return err
		}
		d.ops = append(d.ops, op)
		return nil
	default:
		return fmt.Errorf("%w: %s", command.ErrUnknownType, p.Kind)
	}
}

func (d *Document) applyStyle(style *command.Style) {
	if style != nil && style.Align != nil {
		d.setAlignment(*style.Align)
	}

	if bold := style.IsBold(); bold != d.state.Bold {
		d.state.Bold = bold
		d.ops = append(d.ops, Emphasis{On: bold})
	}

	if underline := style.IsUnderlined(); underline != d.state.Underline {
		d.state.Underline = underline
		d.ops = append(d.ops, Underline{On: underline})
	}

	w, h := style.Magnification()
	if mag := [2]int{w, h}; mag != d.state.Magnification {
		d.state.Magnification = mag
		d.ops = append(d.ops, Magnification{Width: w, Height: h})
	}
}

func (d *Document) setAlignment(align model.Alignment) {
	if align == d.state.Alignment {
		return
	}
	d.state.Alignment = align
	d.ops = append(d.ops, Alignment{Align: align})
}

func (d *Document) barcodeOp(p command.Print) (Barcode, error) {
	if len(p.Data) > MaxBarcodeDataBytes {
		return Barcode{}, &command.FieldValueError{Field: "data", Value: fmt.Sprintf("%d bytes", len(p.Data))}
	}
	for i := 0; i < len(p.Data); i++ {
		if c := p.Data[i]; c < 0x20 || c > 0x7E {
			return Barcode{}, &command.FieldValueError{Field: "data", Value: fmt.Sprintf("byte 0x%02X", c)}
		}
	}

	heightMM := DefaultBarcodeHeightMM
	moduleDots := DefaultBarcodeModuleDots
	if p.Style != nil {
		if p.Style.Height != nil {
			heightMM = *p.Style.Height
		}
		if p.Style.BarWidth != nil {
			moduleDots = *p.Style.BarWidth
		}
	}

	return Barcode{
		Data:       p.Data,
		Symbology:  model.SymbologyCode128,
		ModuleDots: moduleDots,
		HeightDots: MMToDots(decimal.NewFromInt(int64(heightMM)), d.opts.DotsPerMM),
		HRI:        true,
	}, nil
}

func (d *Document) imageOp(ctx context.Context, p command.Print) (Image, error) {
	if d.opts.Images == nil {
		return Image{}, fmt.Errorf("%w: no image loader configured", ErrImageUnavailable)
	}

	img, err := d.opts.Images.Load(ctx, p.Data)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}

	op := Image{
		Source:    img,
		Threshold: DefaultImageThreshold,
		Rotation:  model.RotationNormal,
	}
	if p.Style != nil {
		if p.Style.Diffusion != nil {
			op.Diffusion = *p.Style.Diffusion
		}
		if p.Style.Threshold != nil {
			op.Threshold = *p.Style.Threshold
		}
	}
	op.WidthDots = d.imageWidth(ctx, p.Style, img)
	return op, nil
}

// imageWidth picks the style width, then the detected paper width, then the native width
func (d *Document) imageWidth(ctx context.Context, style *command.Style, img image.Image) int {
	if style != nil && style.Width != nil && *style.Width > 0 {
		return *style.Width
	}
	if d.opts.PaperWidth != nil {
		if mm, err := d.opts.PaperWidth(ctx); err == nil && mm != nil && *mm > 0 {
			return PrintableDots(*mm, d.opts.DotsPerMM)
		}
	}
	return img.Bounds().Dx()
}

func (d *Document) applyAction(a command.Action) error {
	switch params := a.Params.(type) {
	case command.CutParams:
		d.ops = append(d.ops, Cut{Mode: params.Mode})
	case command.PaperFeedParams:
		d.ops = append(d.ops, Feed{Lines: params.Height})
	case command.FeedLineParams:
		d.ops = append(d.ops, LineFeed{Lines: 1})
	case command.RuledLineParams:
		// rules are always centred, whatever alignment the previous entries left behind
		d.state.Alignment = model.AlignCenter
		d.ops = append(d.ops, Alignment{Align: model.AlignCenter})
		thickness := MMToDots(params.Thickness, d.opts.DotsPerMM)
		if thickness < 1 {
			thickness = 1
		}
		d.ops = append(d.ops, RuledLine{
			WidthDots:     MMToDots(params.Width, d.opts.DotsPerMM),
			ThicknessDots: thickness,
			OffsetDots:    MMToDots(params.XOffset, d.opts.DotsPerMM),
			Style:         params.Style,
		})
	default:
		return fmt.Errorf("%w: %s", command.ErrUnknownAction, a.Type)
	}
	return nil
}
