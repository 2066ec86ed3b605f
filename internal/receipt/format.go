package receipt

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// WrapText greedily packs the words of text into lines no wider than budget
// as measured by widthOf. A word wider than budget gets a line of its own and
// is never split. The result always has at least one line.
func WrapText(text string, budget float64, widthOf func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if widthOf(candidate) <= budget {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}

// runeWidth measures monospace text in character cells
func runeWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

// FormatMoney renders v with the currency symbol and exactly two decimals.
// Negative amounts print as -$1.23.
func FormatMoney(currency string, v decimal.Decimal) string {
	v = v.Round(2)
	if v.IsNegative() {
		return "-" + currency + v.Neg().StringFixed(2)
	}
	return currency + v.StringFixed(2)
}

// summaryRow is a label/amount pair shown under the items
type summaryRow struct {
	Label  string
	Amount string
}

// summaryRows lists the rows between the items and the TOTAL line. Both
// renderers use it so the text and image receipts show the same rows.
func summaryRows(r Receipt, t Totals) []summaryRow {
	rows := []summaryRow{{Label: "Subtotal:", Amount: FormatMoney(r.Currency, t.Subtotal)}}

	if t.DiscountAmount.IsPositive() {
		label := "Discount:"
		if r.Discount != nil && r.Discount.Type == DiscountPercentage {
			label = "Discount (" + decimal.NewFromFloat(r.Discount.Value).String() + "%):"
		}
		rows = append(rows, summaryRow{Label: label, Amount: FormatMoney(r.Currency, t.DiscountAmount.Neg())})
	}
	if t.VAT.IsPositive() {
		rows = append(rows, summaryRow{Label: "VAT (" + percent(r.VATRate) + "%):", Amount: FormatMoney(r.Currency, t.VAT)})
	}
	if t.Tax.IsPositive() {
		rows = append(rows, summaryRow{Label: "Tax (" + percent(r.TaxRate) + "%):", Amount: FormatMoney(r.Currency, t.Tax)})
	}
	return rows
}

func percent(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(hundred).StringFixed(2)
}
