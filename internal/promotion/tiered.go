package promotion

import (
	"fmt"
	"sort"

	"github.com/dukerupert/sindri/internal/domain"
)

// tieredQuote picks the highest tier whose quantity threshold the eligible
// quantity meets and discounts the eligible subtotal by that tier's
// percentage. When no tier qualifies, the message reports the shortfall to
// the nearest (lowest-threshold) tier.
func tieredQuote(p domain.Promotion, elig []domain.CartLine) *Quote {
	if len(p.Tiers) == 0 {
		return &Quote{Reason: "This offer is not configured"}
	}

	tiers := make([]domain.Tier, len(p.Tiers))
	copy(tiers, p.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Quantity > tiers[j].Quantity
	})

	n := totalQuantity(elig)
	for _, tier := range tiers {
		if n >= tier.Quantity {
			eligSubtotal := domain.Subtotal(elig)
			return &Quote{
				DiscountCents:   percentOf(eligSubtotal, tier.DiscountPercent),
				Reason:          fmt.Sprintf("%g%% off for buying %d or more eligible items", tier.DiscountPercent, tier.Quantity),
				AffectedLineIDs: lineIDs(elig),
			}
		}
	}

	lowest := tiers[len(tiers)-1]
	return &Quote{
		Reason: fmt.Sprintf("Add %d more eligible item(s) to unlock %g%% off", lowest.Quantity-n, lowest.DiscountPercent),
	}
}
