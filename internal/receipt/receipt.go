package receipt

import (
	"encoding/json"
	"math"
)

// DiscountType selects how a Discount value is interpreted
type DiscountType string

const (
	// DiscountFixed subtracts Value currency units from the subtotal
	DiscountFixed DiscountType = "fixed"
	// DiscountPercentage subtracts Value percent of the subtotal
	DiscountPercentage DiscountType = "percentage"
)

// Discount is an optional reduction applied to the subtotal before tax and VAT
type Discount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// QRCode describes an optional QR code printed at the bottom of an image receipt
type QRCode struct {
	Data string `json:"data"`
	Size int    `json:"size,omitempty"` // Pixels, defaults to Defaults.QRSize
}

// Receipt is the caller-supplied input for a single render
type Receipt struct {
	StoreName      string    `json:"storeName,omitempty"`
	CompanyAddress string    `json:"companyAddress,omitempty"`
	Items          []Item    `json:"items"`
	TaxRate        float64   `json:"taxRate,omitempty"` // Fraction, 0.08 is 8%
	VATRate        float64   `json:"vatRate,omitempty"` // Fraction, 0.2 is 20%
	Discount       *Discount `json:"discount,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	Logo           string    `json:"logo,omitempty"` // File path or data URL
	QRCode         *QRCode   `json:"qrCode,omitempty"`
}

// Item is one purchased item. Quantity and Price are NaN when the source value
// was missing or not a number; the Calculator coerces those to zero.
type Item struct {
	Name     string
	Quantity float64
	Price    float64
}

type itemJSON struct {
	Name     string          `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
}

// UnmarshalJSON accepts any JSON value for quantity and price so a malformed
// item is kept and coerced later instead of failing the whole receipt.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw itemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it.Name = raw.Name
	it.Quantity = lenientNumber(raw.Quantity)
	it.Price = lenientNumber(raw.Price)
	return nil
}

// MarshalJSON writes non-finite numbers as null.
func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string   `json:"name"`
		Quantity *float64 `json:"quantity"`
		Price    *float64 `json:"price"`
	}{
		Name:     it.Name,
		Quantity: finiteOrNil(it.Quantity),
		Price:    finiteOrNil(it.Price),
	})
}

func lenientNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return math.NaN()
	}
	return f
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
