package record

import (
	"strconv"
	"strings"
)

// ProductRecord is the normalized shape of one inventory item recovered from
// free text. String money fields hold bare digit strings (currency symbols
// and thousands separators stripped); absent values are empty strings, never
// fabricated.
type ProductRecord struct {
	Category     string `json:"category"`
	ProductName  string `json:"product_name"`
	Manufacturer string `json:"manufacturer"`
	ModelNumber  string `json:"model_number"`
	Color        string `json:"color"`
	Condition    string `json:"condition"`
	Price        string `json:"price"`

	Supplier       string `json:"supplier,omitempty"`
	ListPrice      string `json:"list_price,omitempty"`
	WholesalePrice string `json:"wholesale_price,omitempty"`
	WholesaleRate  string `json:"wholesale_rate,omitempty"`
	GrossMargin    string `json:"gross_margin,omitempty"`
	SerialNumber   string `json:"serial_number,omitempty"`
	PurchaseDate   string `json:"purchase_date,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// HasIdentifier reports whether the record carries at least a product name
// or a model number (after trimming). Records without either are unusable.
func (r ProductRecord) HasIdentifier() bool {
	return strings.TrimSpace(r.ProductName) != "" || strings.TrimSpace(r.ModelNumber) != ""
}

// Valid reports whether the record satisfies the validity invariant:
// an identifier is present, and price, when present, parses as a
// non-negative integer.
func (r ProductRecord) Valid() bool {
	if !r.HasIdentifier() {
		return false
	}
	if p := strings.TrimSpace(r.Price); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return false
		}
	}
	return true
}

// DedupKey is the identity triple used for duplicate removal. Exact match,
// case-sensitive.
func (r ProductRecord) DedupKey() string {
	return r.ProductName + "\x1f" + r.Manufacturer + "\x1f" + r.Price
}
