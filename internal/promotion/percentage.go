package promotion

import (
	"fmt"

	"github.com/dukerupert/sindri/internal/domain"
)

// percentageQuote discounts the eligible subtotal by a percentage, capped at
// the promotion's maximum discount when one is set.
func percentageQuote(p domain.Promotion, elig []domain.CartLine) *Quote {
	eligSubtotal := domain.Subtotal(elig)
	discount := percentOf(eligSubtotal, p.Percent)

	reason := fmt.Sprintf("%g%% off eligible items", p.Percent)
	if p.MaxDiscountCents > 0 && discount > p.MaxDiscountCents {
		discount = p.MaxDiscountCents
		reason = fmt.Sprintf("%g%% off eligible items (capped at %s)", p.Percent, rupees(p.MaxDiscountCents))
	}

	return &Quote{
		DiscountCents:   discount,
		Reason:          reason,
		AffectedLineIDs: lineIDs(elig),
	}
}
