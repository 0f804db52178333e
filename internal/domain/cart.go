package domain

import (
	"github.com/google/uuid"
)

// CartLine is one line of a client-submitted cart. Carts are ephemeral and
// client-supplied: the server re-derives UnitPriceCents and stock from the
// authoritative product record inside the checkout transaction. Any price the
// client sends is a display hint only and is never trusted.
type CartLine struct {
	// LineID identifies the line within a priced cart. Assigned by the
	// server at re-pricing time; engine results reference these ids.
	LineID uuid.UUID

	ProductID uuid.UUID
	VariantID *uuid.UUID

	// UnitPriceCents is the authoritative per-unit price in minor currency
	// units, filled in server-side from the product record.
	UnitPriceCents int64

	Quantity int32

	// CategoryID is carried for promotion scope matching. Optional.
	CategoryID *uuid.UUID
}

// TotalCents returns the line total (unit price x quantity).
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Subtotal sums line totals across all lines (not just promotion-eligible
// ones). Minimum-order gates compare against this value.
func Subtotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.TotalCents()
	}
	return total
}
