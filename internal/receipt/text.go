package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Column budgets of the monospace layout
const (
	textWidth          = 32
	qtyWidth           = 3
	summaryLabelWidth  = 20
	summaryAmountWidth = 12
	continuationIndent = "    "
	thankYou           = "Thank you for your purchase!"
)

// textDocument accumulates fixed-width receipt lines
type textDocument struct {
	b     strings.Builder
	width int
}

func newTextDocument(width int) *textDocument {
	return &textDocument{width: width}
}

// Line writes s followed by a newline
func (d *textDocument) Line(s string) *textDocument {
	d.b.WriteString(s)
	d.b.WriteByte('\n')
	return d
}

// Rule writes a full-width separator
func (d *textDocument) Rule(char string) *textDocument {
	return d.Line(strings.Repeat(char, d.width))
}

// Center writes s centered in the document width, left padded only
func (d *textDocument) Center(s string) *textDocument {
	pad := (d.width - utf8.RuneCountInString(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return d.Line(strings.Repeat(" ", pad) + s)
}

// Spread writes left and right at opposite edges
func (d *textDocument) Spread(left, right string) *textDocument {
	spaces := d.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if spaces < 1 {
		spaces = 1
	}
	return d.Line(left + strings.Repeat(" ", spaces) + right)
}

// Summary writes a right-aligned label/amount row
func (d *textDocument) Summary(label, amount string) *textDocument {
	return d.Line(fmt.Sprintf("%*s%*s", summaryLabelWidth, label, summaryAmountWidth, amount))
}

// Item writes one line item, wrapping its name into continuation rows
func (d *textDocument) Item(currency string, line LineItem) *textDocument {
	total := FormatMoney(currency, line.Total)
	maxName := d.width - qtyWidth - utf8.RuneCountInString(total) - 2
	if maxName < 1 {
		maxName = 1
	}

	names := WrapText(line.Name, float64(maxName), runeWidth)
	d.Line(fmt.Sprintf("%*s %-*s %s", qtyWidth, line.Quantity.String(), maxName, names[0], total))
	for _, name := range names[1:] {
		d.Line(continuationIndent + name)
	}
	return d
}

func (d *textDocument) String() string {
	return d.b.String()
}

// TextRenderer renders receipts as monospace text
type TextRenderer struct {
	defaults Defaults
	sink     DiagnosticSink
}

// NewTextRenderer creates a TextRenderer. A nil sink discards diagnostics.
func NewTextRenderer(defaults Defaults, sink DiagnosticSink) *TextRenderer {
	if sink == nil {
		sink = discardSink{}
	}
	return &TextRenderer{defaults: defaults, sink: sink}
}

// Render lays out r as a 32 column text receipt. It never fails; malformed
// item amounts are reported to the sink and printed as zero.
func (t *TextRenderer) Render(r Receipt) string {
	r = t.defaults.Apply(r)
	lines, totals := NewCalculator(t.sink).Compute(r.Items, r.Discount, r.TaxRate, r.VATRate)

	doc := newTextDocument(textWidth)
	doc.Rule("=").Center(r.StoreName)
	if r.CompanyAddress != "" {
		doc.Center(r.CompanyAddress)
	}
	doc.Rule("=").
		Spread("QTY ITEM", "TOTAL").
		Rule("-")

	for _, line := range lines {
		doc.Item(r.Currency, line)
	}

	doc.Rule("-")
	for _, row := range summaryRows(r, totals) {
		doc.Summary(row.Label, row.Amount)
	}

	doc.Rule("=").
		Summary("TOTAL:", FormatMoney(r.Currency, totals.Total)).
		Rule("=").
		Center(thankYou).
		Rule("=")

	return doc.String()
}

// RenderText renders r with the built-in defaults, logging diagnostics via slog
func RenderText(r Receipt) string {
	return NewTextRenderer(DefaultSettings, SlogSink{}).Render(r)
}
