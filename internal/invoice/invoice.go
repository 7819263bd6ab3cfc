// Package invoice holds the invoice domain model, the VAT arithmetic, and
// the PDF renderer.
package invoice

import (
	"fmt"
	"time"
)

// VATRate is the fixed VAT rate applied to every invoice
const VATRate = 0.15

// PlaceholderCustomer is the non-selectable first entry of the customer
// selector. It is never a valid customer on an invoice.
const PlaceholderCustomer = "Select customer"

// VATMode selects how the entered amounts relate to VAT
type VATMode string

const (
	// VATInclusive means entered prices already contain VAT; the tax
	// portion is backed out for display
	VATInclusive VATMode = "inclusive"

	// VATExclusive means entered prices exclude VAT; tax is added on top
	VATExclusive VATMode = "exclusive"
)

// ParseVATMode parses a VAT mode string
func ParseVATMode(s string) (VATMode, error) {
	switch VATMode(s) {
	case VATInclusive:
		return VATInclusive, nil
	case VATExclusive:
		return VATExclusive, nil
	}
	return "", fmt.Errorf("unknown VAT mode: %q", s)
}

// LineItem is one row of the invoice
type LineItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// LineTotal returns quantity times unit price
func (li LineItem) LineTotal() float64 {
	return float64(li.Quantity) * li.Price
}

// DefaultLineItem returns the single row every editing session starts with
func DefaultLineItem() LineItem {
	return LineItem{Description: "Item 1", Quantity: 1, Price: 100.0}
}

// NextDefaultItem returns the default row appended after count existing rows
func NextDefaultItem(count int) LineItem {
	return LineItem{
		Description: fmt.Sprintf("Item %d", count+1),
		Quantity:    1,
		Price:       100.0,
	}
}

// Totals is the result of the VAT calculation. Values carry full precision;
// rounding to two decimals happens only at presentation time.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	VAT      float64 `json:"vat"`
	Total    float64 `json:"total"`
}

// Invoice is the render-only document model. Only its number is durable;
// the document itself is handed to the user and not retained.
type Invoice struct {
	Customer  string
	Items     []LineItem
	VATMode   VATMode
	Number    int
	IssueDate time.Time
}

// NumberString returns the printed invoice identifier
func (inv Invoice) NumberString() string {
	return fmt.Sprintf("(i)-%d", inv.Number)
}

// Filename returns the download file name for the generated PDF
func (inv Invoice) Filename() string {
	return fmt.Sprintf("Crystal_Trading_(i)-%d.pdf", inv.Number)
}
