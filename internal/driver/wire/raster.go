// internal/driver/wire/raster.go
package wire

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"printer-bridge/internal/model"
)

// MaxRasterDots bounds the width and height of any bitmap sent to a printer.
// The widest supported heads are 112 mm at 8 dots per millimetre.
const MaxRasterDots = 2048

// Bitmap is a 1 bit raster, most significant bit first, 1 meaning a black dot
type Bitmap struct {
	Width  int
	Height int
	Stride int
	Data   []byte
}

// Row returns the bytes of row y
func (b Bitmap) Row(y int) []byte {
	return b.Data[y*b.Stride : (y+1)*b.Stride]
}

func newBitmap(width, height int) Bitmap {
	if width <= 0 || height <= 0 {
		return Bitmap{}
	}
	stride := (width + 7) / 8
	return Bitmap{
		Width:  width,
		Height: height,
		Stride: stride,
		Data:   make([]byte, stride*height),
	}
}

func (b Bitmap) set(x, y int) {
	b.Data[y*b.Stride+x/8] |= 0x80 >> uint(x%8)
}

var monochrome = color.Palette{color.Black, color.White}

// Rasterize rotates src, scales it to width dots keeping the aspect ratio and
// binarizes it either with a fixed threshold or Floyd-Steinberg diffusion.
// A width of zero or less keeps the native width. Transparent pixels print
// as paper.
func Rasterize(src image.Image, width, threshold int, diffusion bool, rotation model.BitmapRotation) Bitmap {
	rotated := rotate(src, rotation)
	sw, sh := rotated.Bounds().Dx(), rotated.Bounds().Dy()
	if sw == 0 || sh == 0 {
		return Bitmap{}
	}
	if width <= 0 {
		width = sw
	}
	width = Clamp(width, 1, MaxRasterDots)
	height := Clamp(sh*width/sw, 1, MaxRasterDots)

	bounds := image.Rect(0, 0, width, height)
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.White, image.Point{}, draw.Src)
	if width == sw && height == sh {
		draw.Draw(canvas, bounds, rotated, rotated.Bounds().Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(canvas, bounds, rotated, rotated.Bounds(), draw.Over, nil)
	}

	bm := newBitmap(width, height)
	if diffusion {
		dithered := image.NewPaletted(bounds, monochrome)
		draw.FloydSteinberg.Draw(dithered, bounds, canvas, image.Point{})
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if dithered.ColorIndexAt(x, y) == 0 {
					bm.set(x, y)
				}
			}
		}
		return bm
	}

	cut := uint8(Clamp(threshold, 0, 255))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if color.GrayModel.Convert(canvas.At(x, y)).(color.Gray).Y < cut {
				bm.set(x, y)
			}
		}
	}
	return bm
}

// rotate returns src turned by rotation, or src itself for the normal orientation
func rotate(src image.Image, rotation model.BitmapRotation) image.Image {
	b := src.Bounds()
	if rotation != model.RotationLeft90 && rotation != model.RotationRight90 && rotation != model.RotationRotate180 {
		return src
	}

	w, h := b.Dx(), b.Dy()
	if rotation != model.RotationRotate180 {
		w, h = h, w
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var c color.Color
			switch rotation {
			case model.RotationRight90:
				c = src.At(b.Min.X+y, b.Max.Y-1-x)
			case model.RotationLeft90:
				c = src.At(b.Max.X-1-y, b.Min.Y+x)
			default:
				c = src.At(b.Max.X-1-x, b.Max.Y-1-y)
			}
			dst.Set(x, y, c)
		}
	}
	return dst
}

// Rule draws a horizontal rule of width dots starting at offset. A double
// rule is two strokes separated by a gap of the same thickness. A rule with
// no width is empty.
func Rule(width, thickness, offset int, style model.LineStyle) Bitmap {
	if width <= 0 {
		return Bitmap{}
	}
	offset = Clamp(offset, 0, MaxRasterDots-1)
	width = Clamp(width, 1, MaxRasterDots-offset)
	thickness = Clamp(thickness, 1, MaxRasterDots/3)

	height := thickness
	if style == model.LineDouble {
		height = thickness * 3
	}

	bm := newBitmap(offset+width, height)
	for y := 0; y < height; y++ {
		if style == model.LineDouble && y >= thickness && y < thickness*2 {
			continue
		}
		for x := offset; x < offset+width; x++ {
			bm.set(x, y)
		}
	}
	return bm
}
