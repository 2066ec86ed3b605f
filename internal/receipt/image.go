package receipt

import (
	"context"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/zombor/receipt-render/internal/canvas"
	"github.com/zombor/receipt-render/internal/dataurl"
)

// Image layout, in pixels
const (
	pageWidth     = 400
	pageMargin    = 20
	lineHeight    = 20
	baseHeight    = 420 // Header, summary and footer allowance of the measurement surface
	linesPerItem  = 3
	logoMaxWidth  = 160
	logoMaxHeight = 80
	qrGap         = 20
	qrAllowance   = 40
	bottomPadding = 20
	qtyColumn     = 40
	priceGap      = 10
	wrapIndent    = 12
	amountColumn  = 110
)

var (
	titleFont  = canvas.Font{Size: 24, Bold: true}
	bodyFont   = canvas.Font{Size: 14}
	headerFont = canvas.Font{Size: 14, Bold: true}
	totalFont  = canvas.Font{Size: 18, Bold: true}

	ruleColor = color.Gray{Y: 0x99}
)

// ImageDecoder turns a file path or data URL into a drawable image
type ImageDecoder interface {
	Decode(ctx context.Context, ref string) (image.Image, error)
}

// QREncoder produces a QR code for data as a PNG data URL
type QREncoder interface {
	Encode(ctx context.Context, data string, size int) (string, error)
}

// ImageRenderer paints receipts onto canvas surfaces
type ImageRenderer struct {
	surfaces canvas.Factory
	images   ImageDecoder
	qr       QREncoder
	sink     DiagnosticSink
	defaults Defaults
}

// NewImageRenderer creates an ImageRenderer with the built-in defaults that logs diagnostics via slog
func NewImageRenderer(surfaces canvas.Factory, images ImageDecoder, qr QREncoder) *ImageRenderer {
	return NewImageRendererWithDeps(surfaces, images, qr, SlogSink{}, DefaultSettings)
}

// NewImageRendererWithDeps creates an ImageRenderer with a custom sink and defaults
func NewImageRendererWithDeps(surfaces canvas.Factory, images ImageDecoder, qr QREncoder, sink DiagnosticSink, defaults Defaults) *ImageRenderer {
	if sink == nil {
		sink = discardSink{}
	}
	return &ImageRenderer{
		surfaces: surfaces,
		images:   images,
		qr:       qr,
		sink:     sink,
		defaults: defaults,
	}
}

// Render lays the receipt out on an oversized measurement surface, then
// copies it onto a surface trimmed to the content height.
func (ir *ImageRenderer) Render(ctx context.Context, r Receipt) (canvas.Surface, error) {
	r = ir.defaults.Apply(r)
	lines, totals := NewCalculator(ir.sink).Compute(r.Items, r.Discount, r.TaxRate, r.VATRate)

	draft, err := ir.surfaces.Create(pageWidth, estimateHeight(r))
	if err != nil {
		return nil, &StageError{Stage: StageSurface, Err: err}
	}
	paintBackground(draft)

	cursor, err := ir.paint(ctx, draft, r, lines, totals)
	if err != nil {
		return nil, err
	}

	final, err := ir.surfaces.Create(pageWidth, int(math.Ceil(cursor))+bottomPadding)
	if err != nil {
		return nil, &StageError{Stage: StageSurface, Err: err}
	}
	paintBackground(final)
	final.DrawImage(draft.Image(), 0, 0, float64(draft.Width()), float64(draft.Height()))
	return final, nil
}

// RenderTo renders r and hands the result to out. out.Prepare runs before
// layout, so anything it persists survives a failed render.
func (ir *ImageRenderer) RenderTo(ctx context.Context, r Receipt, out Output) (Result, error) {
	if err := out.Prepare(ctx, r); err != nil {
		return Result{}, err
	}
	surface, err := ir.Render(ctx, r)
	if err != nil {
		return Result{}, err
	}
	return out.Deliver(ctx, surface)
}

// estimateHeight is an upper bound on the content height. An item never
// wraps to more lines than it has words.
func estimateHeight(r Receipt) int {
	rows := 0
	for _, it := range r.Items {
		rows += max(linesPerItem, len(strings.Fields(it.Name)))
	}
	h := baseHeight + rows*lineHeight
	if r.Logo != "" {
		h += logoMaxHeight + priceGap
	}
	if r.QRCode != nil {
		h += r.QRCode.Size + qrAllowance
	}
	return h
}

func paintBackground(s canvas.Surface) {
	s.SetFillStyle(color.White)
	s.FillRect(0, 0, float64(s.Width()), float64(s.Height()))
}

// paint draws every section top to bottom and returns the final cursor
func (ir *ImageRenderer) paint(ctx context.Context, s canvas.Surface, r Receipt, lines []LineItem, totals Totals) (float64, error) {
	const (
		left  = float64(pageMargin)
		right = float64(pageWidth - pageMargin)
		mid   = float64(pageWidth) / 2
	)
	y := float64(pageMargin)

	rule := func() {
		s.SetStrokeStyle(ruleColor, 1)
		s.Line(left, y, right, y)
		y += priceGap
	}

	s.SetTextBaseline(canvas.BaselineTop)
	s.SetFillStyle(color.Black)

	if r.Logo != "" {
		y += ir.drawLogo(ctx, s, r.Logo, y)
	}

	s.SetFont(titleFont)
	s.SetTextAlign(canvas.AlignCenter)
	s.FillText(r.StoreName, mid, y)
	y += 32

	if r.CompanyAddress != "" {
		s.SetFont(bodyFont)
		s.FillText(r.CompanyAddress, mid, y)
		y += lineHeight
	}
	y += 8
	rule()

	s.SetFont(headerFont)
	s.SetTextAlign(canvas.AlignLeft)
	s.FillText("QTY", left, y)
	s.FillText("ITEM", left+qtyColumn, y)
	s.SetTextAlign(canvas.AlignRight)
	s.FillText("TOTAL", right, y)
	y += lineHeight
	rule()

	s.SetFont(bodyFont)
	for _, line := range lines {
		price := FormatMoney(r.Currency, line.Total)
		budget := right - left - qtyColumn - s.MeasureText(price) - priceGap
		names := WrapText(line.Name, budget, s.MeasureText)

		s.SetTextAlign(canvas.AlignLeft)
		s.FillText(line.Quantity.String(), left, y)
		s.FillText(names[0], left+qtyColumn, y)
		s.SetTextAlign(canvas.AlignRight)
		s.FillText(price, right, y)
		y += lineHeight

		s.SetTextAlign(canvas.AlignLeft)
		for _, name := range names[1:] {
			s.FillText(name, left+qtyColumn+wrapIndent, y)
			y += lineHeight
		}
	}
	rule()

	s.SetTextAlign(canvas.AlignRight)
	for _, row := range summaryRows(r, totals) {
		s.FillText(row.Label, right-amountColumn, y)
		s.FillText(row.Amount, right, y)
		y += lineHeight
	}
	rule()

	s.SetFont(totalFont)
	s.SetTextAlign(canvas.AlignLeft)
	s.FillText("TOTAL", left, y)
	s.SetTextAlign(canvas.AlignRight)
	s.FillText(FormatMoney(r.Currency, totals.Total), right, y)
	y += 28

	s.SetFont(bodyFont)
	s.SetTextAlign(canvas.AlignCenter)
	s.FillText(thankYou, mid, y)
	y += 30

	if r.QRCode != nil {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		h, err := ir.drawQRCode(ctx, s, *r.QRCode, y)
		if err != nil {
			return 0, err
		}
		y += h
	}
	return y, nil
}

// drawLogo draws the logo centered at y and returns the height it used.
// A logo that cannot be loaded is reported and skipped.
func (ir *ImageRenderer) drawLogo(ctx context.Context, s canvas.Surface, ref string, y float64) float64 {
	img, err := ir.images.Decode(ctx, ref)
	if err != nil {
		ir.sink.Report(Diagnostic{
			Kind:    ResourceUnavailable,
			Message: "Failed to load logo, continuing without it",
			Attrs:   []any{"logo", describeRef(ref), "error", err},
		})
		return 0
	}
	w, h := fitWithin(img.Bounds(), logoMaxWidth, logoMaxHeight)
	if w == 0 || h == 0 {
		return 0
	}
	s.DrawImage(img, (pageWidth-w)/2, y, w, h)
	return h + priceGap
}

func (ir *ImageRenderer) drawQRCode(ctx context.Context, s canvas.Surface, qr QRCode, y float64) (float64, error) {
	url, err := ir.qr.Encode(ctx, qr.Data, qr.Size)
	if err != nil {
		return 0, &StageError{Stage: StageQREncode, Err: err}
	}
	img, err := ir.images.Decode(ctx, url)
	if err != nil {
		return 0, &StageError{Stage: StageQRDecode, Err: err}
	}
	size := float64(qr.Size)
	s.DrawImage(img, (pageWidth-size)/2, y, size, size)
	return size + qrGap, nil
}

// fitWithin scales b down, never up, to fit maxW x maxH keeping its aspect ratio
func fitWithin(b image.Rectangle, maxW, maxH float64) (float64, float64) {
	w, h := float64(b.Dx()), float64(b.Dy())
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := math.Min(1, math.Min(maxW/w, maxH/h))
	return math.Round(w * scale), math.Round(h * scale)
}

func describeRef(ref string) string {
	if dataurl.IsDataURL(ref) {
		return "data URL"
	}
	return ref
}
