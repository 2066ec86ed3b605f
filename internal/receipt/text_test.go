package receipt

import (
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func pad(n int) string {
	return strings.Repeat(" ", n)
}

var _ = Describe("TextRenderer", func() {
	var (
		collector *Collector
		renderer  *TextRenderer
	)

	BeforeEach(func() {
		collector = &Collector{}
		renderer = NewTextRenderer(DefaultSettings, collector)
	})

	renderLines := func(r Receipt) []string {
		out := renderer.Render(r)
		Expect(out).To(HaveSuffix("\n"))
		return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	}

	It("should render the full layout", func() {
		lines := renderLines(Receipt{
			StoreName: "ACME",
			Items: []Item{
				{Name: "Milk", Quantity: 2, Price: 1.5},
				{Name: "Bread", Quantity: 1, Price: 2.25},
			},
			TaxRate: 0.08,
		})

		equals := strings.Repeat("=", 32)
		dashes := strings.Repeat("-", 32)
		Expect(lines).To(Equal([]string{
			equals,
			pad(14) + "ACME",
			equals,
			"QTY ITEM" + pad(19) + "TOTAL",
			dashes,
			"  2 Milk" + pad(18) + " $3.00",
			"  1 Bread" + pad(17) + " $2.25",
			dashes,
			pad(11) + "Subtotal:" + pad(7) + "$5.25",
			pad(8) + "Tax (8.00%):" + pad(7) + "$0.42",
			equals,
			pad(14) + "TOTAL:" + pad(7) + "$5.67",
			equals,
			pad(2) + "Thank you for your purchase!",
			equals,
		}))
	})

	DescribeTable("should print the worked examples",
		func(r Receipt, expected []string) {
			Expect(renderLines(r)).To(ContainElements(expected))
		},
		Entry("milk and bread",
			Receipt{Items: []Item{
				{Name: "Milk", Quantity: 2, Price: 3.5},
				{Name: "Bread", Quantity: 1, Price: 2.75},
			}},
			[]string{
				"  2 Milk" + pad(18) + " $7.00",
				"  1 Bread" + pad(17) + " $2.75",
				pad(11) + "Subtotal:" + pad(7) + "$9.75",
				pad(14) + "TOTAL:" + pad(7) + "$9.75",
			}),
		Entry("ten percent off with eight percent tax",
			Receipt{
				Items:    []Item{{Name: "Jacket", Quantity: 1, Price: 100}},
				Discount: &Discount{Type: DiscountPercentage, Value: 10},
				TaxRate:  0.08,
			},
			[]string{
				pad(11) + "Subtotal:" + pad(5) + "$100.00",
				pad(5) + "Discount (10%):" + pad(5) + "-$10.00",
				pad(8) + "Tax (8.00%):" + pad(7) + "$7.20",
				pad(14) + "TOTAL:" + pad(6) + "$97.20",
			}),
	)

	It("should keep every item row within 32 columns", func() {
		lines := renderLines(Receipt{Items: []Item{
			{Name: "Milk", Quantity: 2, Price: 1.5},
			{Name: "Organic Extra Virgin Olive Oil Large", Quantity: 1, Price: 12.5},
		}})
		for _, line := range lines {
			Expect(len([]rune(line))).To(BeNumerically("<=", 32), line)
		}
	})

	It("should apply the defaults", func() {
		lines := renderLines(Receipt{})
		Expect(lines[1]).To(Equal(pad(8) + "YOUR STORE NAME"))
		Expect(lines).To(ContainElement(pad(11) + "Subtotal:" + pad(7) + "$0.00"))
	})

	It("should center the company address under the store name", func() {
		lines := renderLines(Receipt{StoreName: "ACME", CompanyAddress: "1 Main St"})
		Expect(lines[2]).To(Equal(pad(11) + "1 Main St"))
		Expect(lines[3]).To(Equal(strings.Repeat("=", 32)))
	})

	It("should wrap long names onto indented continuation rows", func() {
		lines := renderLines(Receipt{Items: []Item{
			{Name: "Organic Extra Virgin Olive Oil Large", Quantity: 1, Price: 12.5},
		}})
		Expect(lines[5]).To(Equal("  1 Organic Extra Virgin  $12.50"))
		Expect(lines[6]).To(Equal("    Olive Oil Large"))
		Expect(lines[7]).To(Equal(strings.Repeat("-", 32)))
	})

	It("should show discount, VAT and tax rows", func() {
		lines := renderLines(Receipt{
			Items:    []Item{{Name: "A", Quantity: 2, Price: 5}},
			Discount: &Discount{Type: DiscountPercentage, Value: 10},
			TaxRate:  0.08,
			VATRate:  0.2,
		})
		Expect(lines).To(ContainElements(
			pad(5)+"Discount (10%):"+pad(6)+"-$1.00",
			pad(7)+"VAT (20.00%):"+pad(7)+"$1.80",
			pad(8)+"Tax (8.00%):"+pad(7)+"$0.72",
			pad(14)+"TOTAL:"+pad(6)+"$11.52",
		))
	})

	It("should print a negative total when a fixed discount exceeds the subtotal", func() {
		lines := renderLines(Receipt{
			Items:    []Item{{Name: "Gum", Quantity: 1, Price: 4.5}},
			Discount: &Discount{Type: DiscountFixed, Value: 5},
		})
		Expect(lines).To(ContainElements(
			pad(11)+"Discount:"+pad(6)+"-$5.00",
			pad(14)+"TOTAL:"+pad(6)+"-$0.50",
		))
	})

	It("should print malformed items as zero and report them", func() {
		lines := renderLines(Receipt{Items: []Item{
			{Name: "Broken", Quantity: math.NaN(), Price: 2},
		}})
		Expect(lines[5]).To(Equal("  0 Broken" + pad(16) + " $0.00"))
		Expect(collector.Diagnostics()).To(HaveLen(1))
	})

	It("should use the receipt currency", func() {
		lines := renderLines(Receipt{Currency: "€", Items: []Item{{Name: "Tea", Quantity: 1, Price: 3}}})
		Expect(lines[5]).To(HaveSuffix(" €3.00"))
	})

	It("should render the same output for the same input", func() {
		r := Receipt{Items: []Item{{Name: "A b c d e f g h", Quantity: 3, Price: 0.99}}}
		Expect(renderer.Render(r)).To(Equal(renderer.Render(r)))
	})

	Describe("RenderText", func() {
		It("should use the built-in defaults", func() {
			Expect(RenderText(Receipt{})).To(ContainSubstring("YOUR STORE NAME"))
		})
	})
})
