package receipt

// Defaults holds the values used when a Receipt leaves a field empty
type Defaults struct {
	StoreName string
	Currency  string
	TaxRate   float64
	VATRate   float64
	QRSize    int
}

// DefaultSettings are the built-in defaults
var DefaultSettings = Defaults{
	StoreName: "YOUR STORE NAME",
	Currency:  "$",
	TaxRate:   0,
	VATRate:   0,
	QRSize:    120,
}

// Apply returns a copy of r with empty fields filled in. The caller's
// Receipt, including its QRCode, is left untouched.
func (d Defaults) Apply(r Receipt) Receipt {
	if r.StoreName == "" {
		r.StoreName = d.StoreName
	}
	if r.Currency == "" {
		r.Currency = d.Currency
	}
	if r.TaxRate == 0 {
		r.TaxRate = d.TaxRate
	}
	if r.VATRate == 0 {
		r.VATRate = d.VATRate
	}
	if r.QRCode != nil {
		qr := *r.QRCode
		if qr.Size <= 0 {
			qr.Size = d.QRSize
		}
		r.QRCode = &qr
	}
	return r
}
