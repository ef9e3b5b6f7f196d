// Package pricing converts a client-supplied cart into priced line items.
// All money math is integer arithmetic on minor currency units.
package pricing

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/ecomloop/storefront/internal/domain/coupon"
)

// ErrEmptyCart is returned when the cart contains no lines.
var ErrEmptyCart = errors.New("cart is empty")

// InvalidLineError indicates a cart line with a non-positive quantity or a
// negative unit price.
type InvalidLineError struct {
	ProductID string
	Reason    string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid cart line for product %s: %s", e.ProductID, e.Reason)
}

// Line is a single cart entry as supplied by the client at checkout time.
type Line struct {
	ProductID string
	UnitPrice int64
	Quantity  int
}

// LineItem is a priced cart entry.
type LineItem struct {
	ProductID string
	UnitPrice int64
	Quantity  int
	Amount    int64
}

// Price validates the cart, prices each line, and returns the discounted
// total. The coupon, when non-nil, is applied once to the grand total, never
// per line. Pure: no I/O and deterministic for a given input.
func Price(lines []Line, c *coupon.Coupon) ([]LineItem, int64, error) {
	if len(lines) == 0 {
		return nil, 0, ErrEmptyCart
	}

	items := make([]LineItem, len(lines))
	var total int64
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, 0, &InvalidLineError{ProductID: line.ProductID, Reason: "quantity must be positive"}
		}
		if line.UnitPrice < 0 {
			return nil, 0, &InvalidLineError{ProductID: line.ProductID, Reason: "unit price must not be negative"}
		}
		amount := line.UnitPrice * int64(line.Quantity)
		items[i] = LineItem{
			ProductID: line.ProductID,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Amount:    amount,
		}
		total += amount
	}

	if c != nil {
		total -= Discount(total, c.DiscountPercent)
	}
	return items, total, nil
}

// Discount returns round-half-up(total * percent / 100) in minor units.
func Discount(total int64, percent int) int64 {
	return (total*int64(percent) + 50) / 100
}
