package promotion

import (
	"fmt"

	"github.com/dukerupert/sindri/internal/domain"
)

// fixedAmountQuote takes a flat amount off the eligible subtotal, never more
// than the subtotal itself (totals cannot go negative).
func fixedAmountQuote(p domain.Promotion, elig []domain.CartLine) *Quote {
	eligSubtotal := domain.Subtotal(elig)
	discount := p.AmountCents
	if discount > eligSubtotal {
		discount = eligSubtotal
	}

	return &Quote{
		DiscountCents:   discount,
		Reason:          fmt.Sprintf("%s off", rupees(discount)),
		AffectedLineIDs: lineIDs(elig),
	}
}
