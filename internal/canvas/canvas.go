// Package canvas defines the drawing surface the image receipt is painted on
// and provides a raster implementation of it.
package canvas

import (
	"image"
	"image/color"
)

// Align is the horizontal anchor of drawn text
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Baseline is the vertical anchor of drawn text
type Baseline int

const (
	BaselineTop Baseline = iota
	BaselineMiddle
	BaselineAlphabetic
)

// Font selects the face used for text
type Font struct {
	Size float64 // Points at 72 DPI, so one point is one pixel
	Bold bool
}

// Surface is a 2D drawing target
type Surface interface {
	Width() int
	Height() int

	SetFillStyle(c color.Color)
	SetStrokeStyle(c color.Color, width float64)
	FillRect(x, y, w, h float64)
	Line(x1, y1, x2, y2 float64)

	SetFont(f Font)
	SetTextAlign(a Align)
	SetTextBaseline(b Baseline)
	MeasureText(s string) float64
	FillText(s string, x, y float64)

	// DrawImage draws img scaled to w x h with its top-left corner at x, y
	DrawImage(img image.Image, x, y, w, h float64)

	// Image exposes the current pixels
	Image() image.Image
	EncodePNG() ([]byte, error)
	DataURL() (string, error)
}

// Factory creates surfaces
type Factory interface {
	Create(width, height int) (Surface, error)
}
