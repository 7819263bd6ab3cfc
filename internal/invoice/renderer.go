package invoice

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// BankDetail is one row of the static banking block in the invoice header
type BankDetail struct {
	Label string
	Value string
}

// Layout holds the fixed-coordinate template of the one-page invoice.
// Coordinates are in points on an A4 portrait page, measured from the top
// left. The layout has no pagination: item lists long enough to run past
// the summary block overflow the page.
type Layout struct {
	Title  string
	Footer string

	BorderInset float64
	BorderWidth float64

	MarginX   float64
	TitleY    float64
	NumberY   float64
	DateY     float64
	CustomerY float64

	// Banking block, right-aligned in the header
	BankLabelOffset float64 // label column, from the right edge
	BankValueOffset float64 // value column, from the right edge
	BankStartY      float64
	BankLineHeight  float64
	BankDetails     []BankDetail

	// Item table columns
	TableHeaderY float64
	ColDescX     float64
	ColQtyX      float64
	ColPriceX    float64
	ColTotalX    float64
	RowHeight    float64

	// Summary block beneath the table rule
	SummaryLabelX     float64
	SummaryGap        float64
	SummaryLineHeight float64

	FooterBaseline float64 // from the bottom edge
}

// DefaultLayout returns the Crystal Trading invoice template
func DefaultLayout() Layout {
	return Layout{
		Title:  "Crystal Trading",
		Footer: "Thank you for your business. We look forward to working with you again!",

		BorderInset: 25,
		BorderWidth: 1.5,

		MarginX:   50,
		TitleY:    60,
		NumberY:   80,
		DateY:     100,
		CustomerY: 120,

		BankLabelOffset: 250,
		BankValueOffset: 50,
		BankStartY:      80,
		BankLineHeight:  15,
		BankDetails: []BankDetail{
			{Label: "Bank:", Value: "Capitec Business"},
			{Label: "Acc Name:", Value: "Crystal Trading"},
			{Label: "Acc No:", Value: "1478523690"},
			{Label: "Branch Code:", Value: "470010"},
		},

		TableHeaderY: 180,
		ColDescX:     50,
		ColQtyX:      300,
		ColPriceX:    370,
		ColTotalX:    450,
		RowHeight:    20,

		SummaryLabelX:     400,
		SummaryGap:        25,
		SummaryLineHeight: 15,

		FooterBaseline: 40,
	}
}

// Renderer produces the one-page invoice PDF. It is pure: the same invoice
// and totals always yield an equivalent document, and nothing is written to
// disk.
type Renderer struct {
	layout Layout
}

// NewRenderer creates a Renderer with the given layout template
func NewRenderer(layout Layout) *Renderer {
	return &Renderer{layout: layout}
}

// Render draws the invoice and returns the PDF bytes
func (r *Renderer) Render(inv Invoice, totals Totals) ([]byte, error) {
	l := r.layout

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(l.Title, true)
	pdf.AddPage()
	width, height := pdf.GetPageSize()

	// Border
	pdf.SetLineWidth(l.BorderWidth)
	pdf.Rect(l.BorderInset, l.BorderInset, width-2*l.BorderInset, height-2*l.BorderInset, "D")

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(l.MarginX, l.TitleY, l.Title)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(l.MarginX, l.NumberY, "Invoice No: "+inv.NumberString())
	pdf.Text(l.MarginX, l.DateY, "Date: "+inv.IssueDate.Format("2006-01-02"))
	pdf.Text(l.MarginX, l.CustomerY, "Customer: "+inv.Customer)

	// Banking details, labels left-aligned and values flush right
	for i, detail := range l.BankDetails {
		y := l.BankStartY + float64(i)*l.BankLineHeight
		pdf.Text(width-l.BankLabelOffset, y, detail.Label)
		r.textRight(pdf, width-l.BankValueOffset, y, detail.Value)
	}

	// Table header
	y := l.TableHeaderY
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(l.ColDescX, y, "Description")
	pdf.Text(l.ColQtyX, y, "Qty")
	pdf.Text(l.ColPriceX, y, "Price")
	pdf.Text(l.ColTotalX, y, "Total")
	pdf.Line(l.MarginX, y+5, width-l.MarginX, y+5)

	// Table body
	pdf.SetFont("Helvetica", "", 10)
	y += l.RowHeight
	for _, item := range inv.Items {
		pdf.Text(l.ColDescX, y, item.Description)
		pdf.Text(l.ColQtyX, y, strconv.Itoa(item.Quantity))
		pdf.Text(l.ColPriceX, y, FormatAmount(item.Price))
		pdf.Text(l.ColTotalX, y, FormatAmount(item.LineTotal()))
		y += l.RowHeight
	}

	// Summary
	pdf.Line(l.MarginX, y+5, width-l.MarginX, y+5)
	y += l.SummaryGap
	summary := []struct {
		label string
		value string
		bold  bool
	}{
		{"Subtotal:", FormatAmount(totals.Subtotal), false},
		{fmt.Sprintf("VAT (%.0f%%):", VATRate*100), FormatAmount(totals.VAT), false},
		{"Total:", FormatAmount(totals.Total), true},
	}
	for i, line := range summary {
		if line.bold {
			pdf.SetFont("Helvetica", "B", 10)
		} else {
			pdf.SetFont("Helvetica", "", 10)
		}
		lineY := y + float64(i)*l.SummaryLineHeight
		pdf.Text(l.SummaryLabelX, lineY, line.label)
		r.textRight(pdf, width-l.MarginX, lineY, line.value)
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 10)
	r.textCentered(pdf, width/2, height-l.FooterBaseline, l.Footer)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// textRight draws s with its right edge at x
func (r *Renderer) textRight(pdf *gofpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}

// textCentered draws s centered on x
func (r *Renderer) textCentered(pdf *gofpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}
