package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(items []LineItem) Invoice {
	return Invoice{
		Customer:  "Acme Ltd",
		Items:     items,
		VATMode:   VATExclusive,
		Number:    7,
		IssueDate: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderer_Render(t *testing.T) {
	renderer := NewRenderer(DefaultLayout())

	t.Run("produces a PDF document", func(t *testing.T) {
		items := []LineItem{
			{Description: "Widget", Quantity: 2, Price: 50.00},
			{Description: "Gadget", Quantity: 1, Price: 200.00},
		}
		inv := testInvoice(items)

		content, err := renderer.Render(inv, Calculate(items, inv.VATMode))

		require.NoError(t, err)
		require.NotEmpty(t, content)
		assert.Equal(t, "%PDF", string(content[:4]))
	})

	t.Run("renders an empty table body", func(t *testing.T) {
		inv := testInvoice(nil)

		content, err := renderer.Render(inv, Calculate(nil, inv.VATMode))

		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(content[:4]))
	})

	t.Run("accepts a long item list without error", func(t *testing.T) {
		// Layout is fixed-coordinate with no pagination; rows past the page
		// edge overflow rather than fail.
		var items []LineItem
		for i := 0; i < 60; i++ {
			items = append(items, NextDefaultItem(i))
		}
		inv := testInvoice(items)

		content, err := renderer.Render(inv, Calculate(items, inv.VATMode))

		require.NoError(t, err)
		assert.NotEmpty(t, content)
	})

	t.Run("pure: does not mutate its inputs", func(t *testing.T) {
		items := []LineItem{{Description: "Widget", Quantity: 2, Price: 50.00}}
		inv := testInvoice(items)
		totals := Calculate(items, inv.VATMode)

		_, err := renderer.Render(inv, totals)
		require.NoError(t, err)

		assert.Equal(t, []LineItem{{Description: "Widget", Quantity: 2, Price: 50.00}}, items)
		assert.Equal(t, Calculate(items, inv.VATMode), totals)
	})
}
