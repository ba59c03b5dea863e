// internal/legacy/legacy.go

// Package legacy translates the older append* descriptor surface into
// document operations. Every string option goes through the resolvers, so
// unknown values fall back to their defaults instead of failing.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"printer-bridge/internal/command"
	"printer-bridge/internal/document"
	"printer-bridge/internal/model"
	"printer-bridge/internal/resolve"
)

const (
	defaultBarcodeHeightDots = 40
	defaultQrCell            = 4
	defaultBitmapWidth       = 576
)

// Options configures a translation
type Options struct {
	Charset  model.InternationalType
	Encoding model.Encoding
	Images   document.ImageLoader
}

// Translation is the result of a legacy translation. Skipped lists the
// descriptors that produced nothing, by index and reason.
type Translation struct {
	Buffer  document.Buffer
	Skipped []string
}

// Translator converts legacy descriptors
type Translator struct {
	opts Options
}

// New creates a translator. Text defaults to US-ASCII until an
// appendEncoding descriptor changes it.
func New(opts Options) *Translator {
	if opts.Encoding == "" {
		opts.Encoding = model.EncodingASCII
	}
	return &Translator{opts: opts}
}

type state struct {
	ctx      context.Context
	encoding model.Encoding
	images   document.ImageLoader
	ops      []document.Op
}

type handler func(s *state, d descriptor) error

// handlers are tried in order; the first key present wins
var handlers = []struct {
	key string
	fn  handler
}{
	{"appendCharacterSpace", characterSpace},
	{"appendEncoding", encoding},
	{"appendCodePage", codePage},
	{"append", text("append")},
	{"appendRaw", text("appendRaw")},
	{"appendEmphasis", wrapped("appendEmphasis", func(on bool) document.Op { return document.Emphasis{On: on} })},
	{"enableEmphasis", toggle("enableEmphasis", func(on bool) document.Op { return document.Emphasis{On: on} })},
	{"appendInvert", wrapped("appendInvert", func(on bool) document.Op { return document.Invert{On: on} })},
	{"enableInvert", toggle("enableInvert", func(on bool) document.Op { return document.Invert{On: on} })},
	{"appendUnderline", wrapped("appendUnderline", func(on bool) document.Op { return document.Underline{On: on} })},
	{"enableUnderline", toggle("enableUnderline", func(on bool) document.Op { return document.Underline{On: on} })},
	{"appendInternational", international},
	{"appendLineFeed", lineFeed},
	{"appendUnitFeed", unitFeed},
	{"appendLineSpace", lineSpace},
	{"appendFontStyle", fontStyle},
	{"appendCutPaper", cutPaper},
	{"openCashDrawer", cashDrawer},
	{"appendBlackMark", blackMark},
	{"appendBytes", rawBytes("appendBytes")},
	{"appendRawBytes", rawBytes("appendRawBytes")},
	{"appendAbsolutePosition", absolutePosition},
	{"appendAlignment", alignment},
	{"appendHorizontalTabPosition", tabPositions},
	{"appendLogo", logo},
	{"appendBarcode", barcode},
	{"appendMultiple", multiple},
	{"enableMultiple", enableMultiple},
	{"appendQrCode", qrCode},
	{"appendBitmap", bitmap},
}

// Translate converts descriptors in order. Descriptors without a known key
// and bitmaps that cannot be loaded are skipped; a known key carrying a
// value of the wrong type fails the whole translation.
func (t *Translator) Translate(ctx context.Context, descriptors []map[string]interface{}) (Translation, error) {
	doc := document.New(document.Options{Charset: t.opts.Charset, Encoding: t.opts.Encoding})
	s := &state{ctx: ctx, encoding: t.opts.Encoding, images: t.opts.Images}

	var skipped []string
	for i, raw := range descriptors {
		d := descriptor(raw)
		matched := false
		for _, h := range handlers {
			if !d.has(h.key) {
				continue
			}
			matched = true
			if err := h.fn(s, d); err != nil {
				if errors.Is(err, document.ErrImageUnavailable) {
					skipped = append(skipped, fmt.Sprintf("%d: %v", i, err))
					break
				}
				return Translation{}, fmt.Errorf("legacy command %d: %w", i, err)
			}
			break
		}
		if !matched {
			skipped = append(skipped, fmt.Sprintf("%d: no known key", i))
		}
	}

	doc.Append(s.ops...)
	return Translation{Buffer: doc.Finalize(), Skipped: skipped}, nil
}

func characterSpace(s *state, d descriptor) error {
	n, err := d.int("appendCharacterSpace")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.CharacterSpace{Dots: n})
	return nil
}

func encoding(s *state, d descriptor) error {
	name, err := d.string("appendEncoding")
	if err != nil {
		return err
	}
	s.encoding = resolve.Encoding(name)
	return nil
}

func codePage(s *state, d descriptor) error {
	name, err := d.string("appendCodePage")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.CodePage{Page: resolve.CodePage(name)})
	return nil
}

func text(key string) handler {
	return func(s *state, d descriptor) error {
		data, err := d.string(key)
		if err != nil {
			return err
		}
		s.ops = append(s.ops, s.text(data))
		return nil
	}
}

// wrapped prints data with a style switched on for just that data
func wrapped(key string, op func(on bool) document.Op) handler {
	return func(s *state, d descriptor) error {
		data, err := d.string(key)
		if err != nil {
			return err
		}
		s.ops = append(s.ops, op(true), s.text(data), op(false))
		return nil
	}
}

func toggle(key string, op func(on bool) document.Op) handler {
	return func(s *state, d descriptor) error {
		on, err := d.bool(key, false)
		if err != nil {
			return err
		}
		s.ops = append(s.ops, op(on))
		return nil
	}
}

func international(s *state, d descriptor) error {
	name, err := d.string("appendInternational")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.International{Type: resolve.International(name)})
	return nil
}

func lineFeed(s *state, d descriptor) error {
	n, err := d.int("appendLineFeed")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.LineFeed{Lines: n})
	return nil
}

func unitFeed(s *state, d descriptor) error {
	n, err := d.int("appendUnitFeed")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.UnitFeed{Dots: n})
	return nil
}

func lineSpace(s *state, d descriptor) error {
	n, err := d.int("appendLineSpace")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.LineSpace{Dots: n})
	return nil
}

func fontStyle(s *state, d descriptor) error {
	name, err := d.string("appendFontStyle")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.Font{Style: resolve.FontStyle(name)})
	return nil
}

func cutPaper(s *state, d descriptor) error {
	name, err := d.string("appendCutPaper")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.Cut{Mode: resolve.CutPaperAction(name).CutMode()})
	return nil
}

func cashDrawer(s *state, d descriptor) error {
	n, err := d.int("openCashDrawer")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.Drawer{Channel: resolve.PeripheralChannel(n)})
	return nil
}

func blackMark(s *state, d descriptor) error {
	name, err := d.string("appendBlackMark")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.BlackMark{Type: resolve.BlackMarkType(name)})
	return nil
}

func rawBytes(key string) handler {
	return func(s *state, d descriptor) error {
		data, err := d.bytes(key)
		if err != nil {
			return err
		}
		s.ops = append(s.ops, document.Raw{Data: data})
		return nil
	}
}

func absolutePosition(s *state, d descriptor) error {
	n, err := d.int("appendAbsolutePosition")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.AbsolutePosition{Dots: n})
	if d.has("data") {
		data, err := d.string("data")
		if err != nil {
			return err
		}
		s.ops = append(s.ops, s.text(data))
	}
	return nil
}

func alignment(s *state, d descriptor) error {
	name, err := d.string("appendAlignment")
	if err != nil {
		return err
	}
	if !d.has("data") {
		s.ops = append(s.ops, document.Alignment{Align: resolve.Alignment(name)})
		return nil
	}
	data, err := d.string("data")
	if err != nil {
		return err
	}
	s.positioned(resolve.Alignment(name), func() { s.ops = append(s.ops, s.text(data)) })
	return nil
}

func tabPositions(s *state, d descriptor) error {
	columns, err := d.ints("appendHorizontalTabPosition")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.TabPositions{Columns: columns})
	return nil
}

func logo(s *state, d descriptor) error {
	keyCode, err := d.int("appendLogo")
	if err != nil {
		return err
	}
	size, err := d.stringOr("logoSize", "Normal")
	if err != nil {
		return err
	}
	s.ops = append(s.ops, document.Logo{KeyCode: keyCode, Size: resolve.LogoSize(size)})
	return nil
}

func barcode(s *state, d descriptor) error {
	data, err := d.string("appendBarcode")
	if err != nil {
		return err
	}
	symbology, err := d.stringOr("BarcodeSymbology", "Code128")
	if err != nil {
		return err
	}
	width, err := d.stringOr("BarcodeWidth", "Mode2")
	if err != nil {
		return err
	}
	height, err := d.intOr("height", defaultBarcodeHeightDots)
	if err != nil {
		return err
	}
	hri, err := d.bool("hri", true)
	if err != nil {
		return err
	}

	op := document.Barcode{
		Data:       data,
		Symbology:  resolve.BarcodeSymbology(symbology),
		ModuleDots: ModuleDots(resolve.BarcodeWidth(width)),
		HeightDots: height,
		HRI:        hri,
	}
	return s.placed(d, op)
}

// ModuleDots maps a width mode onto a narrow module width. Modes come in
// three groups of three sharing the 2, 3 and 4 dot widths.
func ModuleDots(width model.BarcodeWidth) int {
	if width < 1 || width > 9 {
		width = 2
	}
	return 2 + (int(width)-1)%3
}

func multiple(s *state, d descriptor) error {
	data, err := d.string("appendMultiple")
	if err != nil {
		return err
	}
	w, h, err := d.magnification()
	if err != nil {
		return err
	}
	s.ops = append(s.ops,
		document.Magnification{Width: w, Height: h},
		s.text(data),
		document.Magnification{Width: 1, Height: 1},
	)
	return nil
}

func enableMultiple(s *state, d descriptor) error {
	on, err := d.bool("enableMultiple", false)
	if err != nil {
		return err
	}
	w, h, err := d.magnification()
	if err != nil {
		return err
	}
	if !on {
		w, h = 1, 1
	}
	s.ops = append(s.ops, document.Magnification{Width: w, Height: h})
	return nil
}

func qrCode(s *state, d descriptor) error {
	data, err := d.string("appendQrCode")
	if err != nil {
		return err
	}
	qrModel := model.QrModel2
	if d.has("QrCodeModel") {
		name, err := d.string("QrCodeModel")
		if err != nil {
			return err
		}
		qrModel = resolve.QrCodeModel(name)
	}
	level, err := d.stringOr("QrCodeLevel", "H")
	if err != nil {
		return err
	}
	cell, err := d.intOr("cell", defaultQrCell)
	if err != nil {
		return err
	}

	return s.placed(d, document.QRCode{
		Data:  data,
		Model: qrModel,
		Level: resolve.QrCodeLevel(level),
		Cell:  cell,
	})
}

func bitmap(s *state, d descriptor) error {
	source, err := d.string("appendBitmap")
	if err != nil {
		return err
	}
	diffusion, err := d.bool("diffusion", true)
	if err != nil {
		return err
	}
	width, err := d.intOr("width", defaultBitmapWidth)
	if err != nil {
		return err
	}
	// bothScale is accepted for compatibility; images always scale proportionally
	if _, err := d.bool("bothScale", true); err != nil {
		return err
	}
	rotation, err := d.stringOr("rotation", "Normal")
	if err != nil {
		return err
	}

	if s.images == nil {
		return fmt.Errorf("%w: no image loader configured", document.ErrImageUnavailable)
	}
	img, err := s.images.Load(s.ctx, source)
	if err != nil {
		return fmt.Errorf("%w: %v", document.ErrImageUnavailable, err)
	}

	return s.placed(d, document.Image{
		Source:    img,
		WidthDots: width,
		Diffusion: diffusion,
		Threshold: document.DefaultImageThreshold,
		Rotation:  resolve.BitmapRotation(rotation),
	})
}

func (s *state) text(data string) document.Op {
	return document.Text{Data: data, Encoding: s.encoding}
}

// placed appends op at the absolutePosition or alignment the descriptor asks for
func (s *state) placed(d descriptor, op document.Op) error {
	if d.has("absolutePosition") {
		n, err := d.int("absolutePosition")
		if err != nil {
			return err
		}
		s.ops = append(s.ops, document.AbsolutePosition{Dots: n}, op)
		return nil
	}
	if d.has("alignment") {
		name, err := d.string("alignment")
		if err != nil {
			return err
		}
		s.positioned(resolve.Alignment(name), func() { s.ops = append(s.ops, op) })
		return nil
	}
	s.ops = append(s.ops, op)
	return nil
}

// positioned emits content under align and returns to left alignment
func (s *state) positioned(align model.Alignment, emit func()) {
	s.ops = append(s.ops, document.Alignment{Align: align})
	emit()
	s.ops = append(s.ops, document.Alignment{Align: model.AlignLeft})
}

// descriptor is a single legacy command map
type descriptor map[string]interface{}

func (d descriptor) has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d descriptor) string(key string) (string, error) {
	switch v := d[key].(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", &command.FieldTypeError{Field: key, Type: fmt.Sprintf("%T", d[key])}
	}
}

func (d descriptor) stringOr(key, def string) (string, error) {
	if !d.has(key) {
		return def, nil
	}
	return d.string(key)
}

func (d descriptor) int(key string) (int, error) {
	return toInt(key, d[key])
}

func (d descriptor) intOr(key string, def int) (int, error) {
	if !d.has(key) {
		return def, nil
	}
	return d.int(key)
}

func (d descriptor) bool(key string, def bool) (bool, error) {
	v, ok := d[key]
	if !ok {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case float64:
		return b != 0, nil
	case int:
		return b != 0, nil
	default:
		return false, &command.FieldTypeError{Field: key, Type: fmt.Sprintf("%T", v)}
	}
}

func (d descriptor) ints(key string) ([]int, error) {
	list, ok := d[key].([]interface{})
	if !ok {
		if typed, ok := d[key].([]int); ok {
			return typed, nil
		}
		return nil, &command.FieldTypeError{Field: key, Type: fmt.Sprintf("%T", d[key])}
	}
	out := make([]int, 0, len(list))
	for _, item := range list {
		n, err := toInt(key, item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (d descriptor) bytes(key string) ([]byte, error) {
	values, err := d.ints(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(values))
	for i, v := range values {
		if v < -128 || v > 255 {
			return nil, &command.FieldValueError{Field: key, Value: v}
		}
		out[i] = byte(v)
	}
	return out, nil
}

func (d descriptor) magnification() (int, int, error) {
	w, err := d.intOr("width", 1)
	if err != nil {
		return 0, 0, err
	}
	h, err := d.intOr("height", 1)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func toInt(field string, v interface{}) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &command.FieldTypeError{Field: field, Type: "json.Number"}
		}
		return int(i), nil
	default:
		return 0, &command.FieldTypeError{Field: field, Type: fmt.Sprintf("%T", v)}
	}
}
