package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WrapText", func() {
	It("should keep text that fits on one line", func() {
		Expect(WrapText("Milk", 10, runeWidth)).To(Equal([]string{"Milk"}))
	})

	It("should pack words greedily", func() {
		lines := WrapText("Organic Extra Virgin Olive Oil Large", 21, runeWidth)
		Expect(lines).To(Equal([]string{"Organic Extra Virgin", "Olive Oil Large"}))
	})

	It("should allow a line to fill the budget exactly", func() {
		Expect(WrapText("abc def", 7, runeWidth)).To(Equal([]string{"abc def"}))
		Expect(WrapText("abc def", 6, runeWidth)).To(Equal([]string{"abc", "def"}))
	})

	It("should put an overlong word on its own line without splitting it", func() {
		lines := WrapText("a Supercalifragilistic b", 5, runeWidth)
		Expect(lines).To(Equal([]string{"a", "Supercalifragilistic", "b"}))
	})

	It("should return one empty line for empty text", func() {
		Expect(WrapText("", 10, runeWidth)).To(Equal([]string{""}))
		Expect(WrapText("   ", 10, runeWidth)).To(Equal([]string{""}))
	})

	It("should use the injected width function", func() {
		double := func(s string) float64 { return 2 * runeWidth(s) }
		Expect(WrapText("ab cd", 10, double)).To(Equal([]string{"ab cd"}))
		Expect(WrapText("ab cd", 9, double)).To(Equal([]string{"ab", "cd"}))
	})

	It("should be deterministic", func() {
		text := "one two three four five six seven"
		Expect(WrapText(text, 9, runeWidth)).To(Equal(WrapText(text, 9, runeWidth)))
	})
})

var _ = Describe("FormatMoney", func() {
	DescribeTable("should format with the symbol and two decimals",
		func(currency, value, expected string) {
			Expect(FormatMoney(currency, dec(value))).To(Equal(expected))
		},
		Entry("whole", "$", "3", "$3.00"),
		Entry("rounded", "$", "0.525", "$0.53"),
		Entry("negative", "$", "-0.5", "-$0.50"),
		Entry("other symbol", "€", "12.3", "€12.30"),
		Entry("zero", "$", "0", "$0.00"),
	)
})

var _ = Describe("summaryRows", func() {
	It("should always show the subtotal", func() {
		r := Receipt{Currency: "$"}
		rows := summaryRows(r, Totals{Subtotal: dec("5")})
		Expect(rows).To(Equal([]summaryRow{{Label: "Subtotal:", Amount: "$5.00"}}))
	})

	It("should label a percentage discount with its value", func() {
		r := Receipt{Currency: "$", Discount: &Discount{Type: DiscountPercentage, Value: 10}}
		rows := summaryRows(r, Totals{Subtotal: dec("10"), DiscountAmount: dec("1")})
		Expect(rows).To(ContainElement(summaryRow{Label: "Discount (10%):", Amount: "-$1.00"}))
	})

	It("should label a fixed discount plainly", func() {
		r := Receipt{Currency: "$", Discount: &Discount{Type: DiscountFixed, Value: 5}}
		rows := summaryRows(r, Totals{Subtotal: dec("4.5"), DiscountAmount: dec("5")})
		Expect(rows).To(ContainElement(summaryRow{Label: "Discount:", Amount: "-$5.00"}))
	})

	It("should list VAT before tax with two decimal percentages", func() {
		r := Receipt{Currency: "$", TaxRate: 0.08, VATRate: 0.2}
		rows := summaryRows(r, Totals{Subtotal: dec("9"), Tax: dec("0.72"), VAT: dec("1.8")})
		Expect(rows).To(Equal([]summaryRow{
			{Label: "Subtotal:", Amount: "$9.00"},
			{Label: "VAT (20.00%):", Amount: "$1.80"},
			{Label: "Tax (8.00%):", Amount: "$0.72"},
		}))
	})

	It("should omit zero discount, tax and VAT rows", func() {
		r := Receipt{Currency: "$", Discount: &Discount{Type: DiscountFixed, Value: 0}}
		Expect(summaryRows(r, Totals{Subtotal: dec("1")})).To(HaveLen(1))
	})
})
