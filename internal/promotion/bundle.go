package promotion

import (
	"fmt"

	"github.com/dukerupert/sindri/internal/domain"
)

// bundleQuote prices every full group of Bundle.Quantity eligible units at
// Bundle.PriceCents. Units are consumed by walking lines in cart order: the
// leftover N mod qty units are drawn greedily from the front of that walk
// and keep their original price. Cart order is the deterministic tie-break
// here (BOGO deliberately uses price order instead); reordering the cart can
// change which units end up in a bundle, and the tests pin this behavior.
func bundleQuote(p domain.Promotion, elig []domain.CartLine, label string) *Quote {
	spec := p.Bundle
	if spec == nil || spec.Quantity <= 0 {
		return &Quote{Reason: "This offer is not configured"}
	}

	n := totalQuantity(elig)
	if n < spec.Quantity {
		remaining := spec.Quantity - n
		return &Quote{
			Reason: fmt.Sprintf("Add %d more eligible item(s) to unlock this %s offer", remaining, label),
		}
	}

	bundles := n / spec.Quantity
	leftover := n % spec.Quantity

	units := expandUnits(elig)

	// Leftover units come off the front of the cart walk at full price;
	// everything after them is bundled.
	var leftoverCost int64
	for _, u := range units[:leftover] {
		leftoverCost += u.priceCents
	}

	eligSubtotal := domain.Subtotal(elig)
	discount := eligSubtotal - (int64(bundles)*spec.PriceCents + leftoverCost)
	if discount < 0 {
		// Bundle price is worse than list price; no saving, not a bug.
		return &Quote{Reason: fmt.Sprintf("This %s offer does not reduce the price of your items", label)}
	}

	return &Quote{
		DiscountCents:   discount,
		Reason:          fmt.Sprintf("Buy %d for %s (%d %s(s) applied)", spec.Quantity, rupees(spec.PriceCents), bundles, label),
		AffectedLineIDs: distinctLineIDs(units[leftover:]),
	}
}

// mixMatchQuote and quantityBreakQuote are presentation variants of the same
// quantity-threshold mechanism as bundle; they delegate rather than
// duplicate the walk.
func mixMatchQuote(p domain.Promotion, elig []domain.CartLine) *Quote {
	return bundleQuote(p, elig, "mix & match")
}

func quantityBreakQuote(p domain.Promotion, elig []domain.CartLine) *Quote {
	return bundleQuote(p, elig, "quantity break")
}
