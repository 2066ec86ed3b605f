package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zombor/receipt-render/internal/dataurl"
)

// Parsed fonts are immutable and shared; faces are created per surface
// because a font.Face is not safe for concurrent use.
var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parsing regular font: %w", fontsErr)
			return
		}
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("parsing bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

// Limits on raster surfaces. An RGBA surface at MaxPixels is 64MB.
const (
	MaxSide   = 32768
	MaxPixels = 1 << 24
)

// ErrTooLarge is returned for surfaces over MaxSide or MaxPixels
var ErrTooLarge = errors.New("surface too large")

// RasterFactory creates in-memory RGBA surfaces
type RasterFactory struct{}

// Create implements Factory
func (RasterFactory) Create(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if width > MaxSide || height > MaxSide || width*height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}
	r := &Raster{
		dc:        gg.NewContext(width, height),
		fill:      color.Black,
		stroke:    color.Black,
		lineWidth: 1,
		faces:     make(map[Font]font.Face),
	}
	r.SetFont(Font{Size: 12})
	return r, nil
}

// Raster is a Surface backed by a gg context
type Raster struct {
	dc        *gg.Context
	fill      color.Color
	stroke    color.Color
	lineWidth float64
	align     Align
	baseline  Baseline
	faces     map[Font]font.Face
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

func (r *Raster) SetFillStyle(c color.Color) { r.fill = c }

func (r *Raster) SetStrokeStyle(c color.Color, width float64) {
	r.stroke = c
	r.lineWidth = width
}

func (r *Raster) FillRect(x, y, w, h float64) {
	r.dc.SetColor(r.fill)
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r *Raster) Line(x1, y1, x2, y2 float64) {
	r.dc.SetColor(r.stroke)
	r.dc.SetLineWidth(r.lineWidth)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

func (r *Raster) SetFont(f Font) {
	face, ok := r.faces[f]
	if !ok {
		ttf := regularFont
		if f.Bold {
			ttf = boldFont
		}
		face = truetype.NewFace(ttf, &truetype.Options{Size: f.Size, Hinting: font.HintingFull})
		r.faces[f] = face
	}
	r.dc.SetFontFace(face)
}

func (r *Raster) SetTextAlign(a Align)       { r.align = a }
func (r *Raster) SetTextBaseline(b Baseline) { r.baseline = b }

func (r *Raster) MeasureText(s string) float64 {
	w, _ := r.dc.MeasureString(s)
	return w
}

func (r *Raster) FillText(s string, x, y float64) {
	var ax, ay float64
	switch r.align {
	case AlignCenter:
		ax = 0.5
	case AlignRight:
		ax = 1
	}
	// gg anchors on the alphabetic baseline; ay shifts it down by ay * font height
	switch r.baseline {
	case BaselineTop:
		ay = 1
	case BaselineMiddle:
		ay = 0.5
	}
	r.dc.SetColor(r.fill)
	r.dc.DrawStringAnchored(s, x, y, ax, ay)
}

func (r *Raster) DrawImage(img image.Image, x, y, w, h float64) {
	iw, ih := int(math.Round(w)), int(math.Round(h))
	if iw <= 0 || ih <= 0 {
		return
	}
	src := img
	b := img.Bounds()
	if b.Dx() != iw || b.Dy() != ih {
		scaled := image.NewRGBA(image.Rect(0, 0, iw, ih))
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, xdraw.Over, nil)
		src = scaled
	}
	r.dc.DrawImage(src, int(math.Round(x)), int(math.Round(y)))
}

func (r *Raster) Image() image.Image { return r.dc.Image() }

func (r *Raster) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Raster) DataURL() (string, error) {
	data, err := r.EncodePNG()
	if err != nil {
		return "", err
	}
	return dataurl.Encode("image/png", data), nil
}
