package invoice

// Calculate computes subtotal, VAT and total for the given line items. Pure:
// identical inputs always yield identical outputs, and an empty item list
// yields all zeros.
//
// Exclusive mode adds 15% on top of the subtotal. Inclusive mode treats the
// subtotal as already containing VAT and backs the tax portion out.
func Calculate(items []LineItem, mode VATMode) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	if mode == VATExclusive {
		vat := subtotal * VATRate
		return Totals{
			Subtotal: subtotal,
			VAT:      vat,
			Total:    subtotal + vat,
		}
	}

	return Totals{
		Subtotal: subtotal,
		VAT:      subtotal - subtotal/(1+VATRate),
		Total:    subtotal,
	}
}
