// Package session implements the single-session editing state machine: the
// draft line-item list, the customer and VAT-mode selections, and the
// generate transition that issues an invoice number and renders the PDF.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crystaltrading/invoice-server/internal/counter"
	"github.com/crystaltrading/invoice-server/internal/invoice"
	"github.com/crystaltrading/invoice-server/pkg/utils"
)

// ErrNoCustomer is returned by Generate while no real customer is selected
var ErrNoCustomer = errors.New("no customer selected")

// Counter is the session's view of the invoice number store
type Counter interface {
	Load() (counter.State, error)
	IncrementAndPersist() (int, error)
}

// Renderer is the session's view of the PDF renderer
type Renderer interface {
	Render(inv invoice.Invoice, totals invoice.Totals) ([]byte, error)
}

// ItemPatch carries the fields of an edit; nil fields are left unchanged
type ItemPatch struct {
	Description *string  `json:"description"`
	Quantity    *int     `json:"quantity"`
	Price       *float64 `json:"price"`
}

// Artifact is a generated invoice document offered for download
type Artifact struct {
	Number   int
	Filename string
	Content  []byte
}

// Snapshot is the session state handed to the presentation layer, with
// totals recomputed on every read so the display always reflects the
// current item list.
type Snapshot struct {
	Customers         []string           `json:"customers"`
	Customer          string             `json:"customer"`
	VATMode           invoice.VATMode    `json:"vat_mode"`
	Items             []invoice.LineItem `json:"items"`
	Totals            invoice.Totals     `json:"totals"`
	CanGenerate       bool               `json:"can_generate"`
	LastInvoiceNumber int                `json:"last_invoice_number,omitempty"`
}

// Controller owns one editing session. Every transition runs to completion
// under the mutex before the next one is accepted.
type Controller struct {
	mu         sync.Mutex
	customers  []string
	items      []invoice.LineItem
	customer   string
	vatMode    invoice.VATMode
	lastNumber int
	lastDoc    []byte

	counter  Counter
	renderer Renderer
	logger   *zap.Logger
}

// NewController creates a session in its initial state: one default line
// item, no customer selected, VAT-inclusive mode, no prior document.
func NewController(customers []string, ctr Counter, renderer Renderer, logger *zap.Logger) *Controller {
	return &Controller{
		customers: customers,
		items:     []invoice.LineItem{invoice.DefaultLineItem()},
		vatMode:   invoice.VATInclusive,
		counter:   ctr,
		renderer:  renderer,
		logger:    logger,
	}
}

// Snapshot returns the current state with freshly computed totals
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]invoice.LineItem, len(c.items))
	copy(items, c.items)

	return Snapshot{
		Customers:         c.customers,
		Customer:          c.customer,
		VATMode:           c.vatMode,
		Items:             items,
		Totals:            invoice.Calculate(items, c.vatMode),
		CanGenerate:       c.customer != "",
		LastInvoiceNumber: c.lastNumber,
	}
}

// AddItem appends a new default row labelled after the current count
func (c *Controller) AddItem() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, invoice.NextDefaultItem(len(c.items)))
}

// EditItem applies the patch to the row at index. An out-of-range index is
// a silent no-op; invalid field values are rejected.
func (c *Controller) EditItem(index int, patch ItemPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.items) {
		return nil
	}

	if patch.Quantity != nil {
		if err := utils.ValidateQuantity(*patch.Quantity); err != nil {
			return err
		}
	}
	if patch.Price != nil {
		if err := utils.ValidatePrice(*patch.Price); err != nil {
			return err
		}
	}

	item := &c.items[index]
	if patch.Description != nil {
		item.Description = utils.SanitizeDescription(*patch.Description)
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	return nil
}

// RemoveItem deletes the row at index; out of range is a silent no-op
func (c *Controller) RemoveItem(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.items) {
		return
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
}

// SelectCustomer updates the customer selection. The placeholder entry or an
// empty name clears the selection; any other name must be a known customer.
func (c *Controller) SelectCustomer(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" || name == invoice.PlaceholderCustomer {
		c.customer = ""
		return nil
	}
	for _, known := range c.customers {
		if known == name {
			c.customer = name
			return nil
		}
	}
	return fmt.Errorf("unknown customer: %q", name)
}

// SelectVATMode updates the VAT-mode selection
func (c *Controller) SelectVATMode(mode invoice.VATMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vatMode = mode
}

// Generate renders the invoice and consumes the next invoice number. The
// counter is advanced and persisted only after the document rendered
// successfully, so a render failure never burns a number. On success the
// item list is reset to its single default row; the customer and VAT-mode
// selections are kept for the next invoice.
func (c *Controller) Generate(now time.Time) (Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.customer == "" {
		return Artifact{}, ErrNoCustomer
	}

	state, err := c.counter.Load()
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to load invoice counter: %w", err)
	}

	inv := invoice.Invoice{
		Customer:  c.customer,
		Items:     c.items,
		VATMode:   c.vatMode,
		Number:    state.GlobalInvoiceNumber + 1,
		IssueDate: now,
	}
	totals := invoice.Calculate(c.items, c.vatMode)

	content, err := c.renderer.Render(inv, totals)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to render invoice: %w", err)
	}

	issued, err := c.counter.IncrementAndPersist()
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to persist invoice counter: %w", err)
	}
	if issued != inv.Number {
		// Another writer advanced the shared counter file between the read
		// and the increment. The document keeps the number it was rendered
		// with; the discrepancy is only logged.
		c.logger.Warn("Invoice counter advanced concurrently",
			zap.Int("rendered_number", inv.Number),
			zap.Int("issued_number", issued))
	}

	c.lastNumber = inv.Number
	c.lastDoc = content
	c.items = []invoice.LineItem{invoice.DefaultLineItem()}

	c.logger.Info("Invoice generated",
		zap.Int("invoice_number", inv.Number),
		zap.String("customer", inv.Customer),
		zap.String("vat_mode", string(inv.VATMode)),
		zap.Float64("total", totals.Total))

	return Artifact{
		Number:   inv.Number,
		Filename: inv.Filename(),
		Content:  content,
	}, nil
}

// LastArtifact returns the most recently generated document, if any
func (c *Controller) LastArtifact() (Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastDoc == nil {
		return Artifact{}, false
	}
	inv := invoice.Invoice{Number: c.lastNumber}
	return Artifact{
		Number:   c.lastNumber,
		Filename: inv.Filename(),
		Content:  c.lastDoc,
	}, true
}
