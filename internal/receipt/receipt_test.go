package receipt

import (
	"encoding/json"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Receipt", func() {
	Describe("Item JSON", func() {
		It("should decode numbers", func() {
			var it Item
			Expect(json.Unmarshal([]byte(`{"name":"Milk","quantity":2,"price":1.5}`), &it)).To(Succeed())
			Expect(it).To(Equal(Item{Name: "Milk", Quantity: 2, Price: 1.5}))
		})

		It("should keep items with malformed numbers as NaN", func() {
			var r Receipt
			data := `{"items":[{"name":"A","quantity":"two","price":1},{"name":"B","price":2},{"name":"C","quantity":null,"price":{}}]}`
			Expect(json.Unmarshal([]byte(data), &r)).To(Succeed())
			Expect(r.Items).To(HaveLen(3))
			Expect(math.IsNaN(r.Items[0].Quantity)).To(BeTrue())
			Expect(r.Items[0].Price).To(Equal(1.0))
			Expect(math.IsNaN(r.Items[1].Quantity)).To(BeTrue())
			Expect(math.IsNaN(r.Items[2].Quantity)).To(BeTrue())
			Expect(math.IsNaN(r.Items[2].Price)).To(BeTrue())
		})

		It("should reject an item that is not an object", func() {
			var r Receipt
			Expect(json.Unmarshal([]byte(`{"items":["milk"]}`), &r)).NotTo(Succeed())
		})

		It("should encode NaN as null", func() {
			data, err := json.Marshal(Item{Name: "A", Quantity: math.NaN(), Price: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(MatchJSON(`{"name":"A","quantity":null,"price":2}`))
		})
	})

	It("should decode the full receipt shape", func() {
		var r Receipt
		data := `{
			"storeName": "ACME",
			"companyAddress": "1 Main St",
			"items": [{"name": "Milk", "quantity": 1, "price": 3}],
			"taxRate": 0.08,
			"vatRate": 0.2,
			"discount": {"type": "percentage", "value": 10},
			"currency": "€",
			"logo": "logo.png",
			"qrCode": {"data": "https://example.com", "size": 100}
		}`
		Expect(json.Unmarshal([]byte(data), &r)).To(Succeed())
		Expect(r.StoreName).To(Equal("ACME"))
		Expect(r.CompanyAddress).To(Equal("1 Main St"))
		Expect(r.TaxRate).To(Equal(0.08))
		Expect(r.VATRate).To(Equal(0.2))
		Expect(r.Discount).To(Equal(&Discount{Type: DiscountPercentage, Value: 10}))
		Expect(r.Currency).To(Equal("€"))
		Expect(r.Logo).To(Equal("logo.png"))
		Expect(r.QRCode).To(Equal(&QRCode{Data: "https://example.com", Size: 100}))
	})

	Describe("Defaults", func() {
		It("should fill in empty fields", func() {
			r := DefaultSettings.Apply(Receipt{QRCode: &QRCode{Data: "x"}})
			Expect(r.StoreName).To(Equal("YOUR STORE NAME"))
			Expect(r.Currency).To(Equal("$"))
			Expect(r.QRCode.Size).To(Equal(120))
		})

		It("should keep values that are set", func() {
			d := Defaults{StoreName: "Default", Currency: "£", TaxRate: 0.1, VATRate: 0.2, QRSize: 50}
			r := d.Apply(Receipt{StoreName: "Mine", Currency: "$", TaxRate: 0.05, QRCode: &QRCode{Data: "x", Size: 80}})
			Expect(r.StoreName).To(Equal("Mine"))
			Expect(r.Currency).To(Equal("$"))
			Expect(r.TaxRate).To(Equal(0.05))
			Expect(r.VATRate).To(Equal(0.2))
			Expect(r.QRCode.Size).To(Equal(80))
		})
	})

	Describe("Diagnostics", func() {
		It("should fan out through a Tee", func() {
			a, b := &Collector{}, &Collector{}
			Tee{a, b, SlogSink{}}.Report(Diagnostic{Kind: InputAnomaly, Message: "bad"})
			Expect(a.Diagnostics()).To(HaveLen(1))
			Expect(b.Diagnostics()).To(HaveLen(1))
		})

		It("should return a copy of the collected diagnostics", func() {
			c := &Collector{}
			c.Report(Diagnostic{Kind: InputAnomaly})
			got := c.Diagnostics()
			got[0].Kind = ResourceUnavailable
			Expect(c.Diagnostics()[0].Kind).To(Equal(InputAnomaly))
		})
	})
})
