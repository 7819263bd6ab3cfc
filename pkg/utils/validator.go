package utils

import (
	"fmt"
	"regexp"
)

var controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)

// ValidateQuantity validates a line-item quantity
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1: %d", quantity)
	}
	return nil
}

// ValidatePrice validates a line-item unit price
func ValidatePrice(price float64) error {
	if price < 0 {
		return fmt.Errorf("price must not be negative: %.2f", price)
	}
	return nil
}

// SanitizeDescription strips control characters from user-entered text
// before it reaches the PDF renderer.
func SanitizeDescription(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
