// Package promotion implements the eligibility evaluator, the discount
// strategy engine and the best-offer selector. Everything in this package is
// pure computation over a priced cart: no I/O, no clock reads, safe to call
// redundantly.
package promotion

import (
	"fmt"
	"math"
	"time"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/google/uuid"
)

// Quote is the result of evaluating one promotion against a cart.
type Quote struct {
	// DiscountCents is the computed discount. Always within
	// [0, eligible subtotal].
	DiscountCents int64

	// Reason is a human-readable explanation of the outcome, shown to the
	// customer ("10% off eligible items", "Add ₹50.00 more to use this
	// offer", ...).
	Reason string

	// AffectedLineIDs names the cart lines that received discount.
	AffectedLineIDs []uuid.UUID

	// ShortfallCents is non-zero exactly when the discount is zero because
	// the cart subtotal is below the promotion's minimum order amount.
	// Callers use it to distinguish "needs a bigger order" from "does not
	// apply to these items", which is a silent zero.
	ShortfallCents int64
}

// Applied reports whether the quote granted any discount.
func (q *Quote) Applied() bool {
	return q.DiscountCents > 0
}

// Evaluate computes the discount a single promotion yields for the cart.
// The minimum-order gate compares against the subtotal of *all* lines, not
// just eligible ones. Returns an error only for malformed promotions or
// arithmetic that violates the discount bounds; a promotion that simply does
// not apply yields a zero quote.
func Evaluate(p domain.Promotion, cart []domain.CartLine, now time.Time) (*Quote, error) {
	subtotal := domain.Subtotal(cart)
	if p.MinOrderCents > 0 && subtotal < p.MinOrderCents {
		short := p.MinOrderCents - subtotal
		return &Quote{
			Reason:         fmt.Sprintf("Add %s more to your order to use this offer", rupees(short)),
			ShortfallCents: short,
		}, nil
	}

	elig := eligibleLines(p, cart, now)
	if len(elig) == 0 {
		return &Quote{Reason: "This offer does not apply to the items in your cart"}, nil
	}

	var q *Quote
	switch p.Type {
	case domain.PromotionPercentage:
		q = percentageQuote(p, elig)
	case domain.PromotionFixedAmount:
		q = fixedAmountQuote(p, elig)
	case domain.PromotionBundle:
		q = bundleQuote(p, elig, "bundle")
	case domain.PromotionMixMatch:
		q = mixMatchQuote(p, elig)
	case domain.PromotionQuantityBreak:
		q = quantityBreakQuote(p, elig)
	case domain.PromotionBOGO:
		q = bogoQuote(p, elig)
	case domain.PromotionTiered:
		q = tieredQuote(p, elig)
	default:
		return nil, domain.Errorf(domain.EINVALID, "promotion.evaluate", "unknown promotion type: %s", p.Type)
	}

	if err := checkBounds(q, elig); err != nil {
		return nil, err
	}
	return q, nil
}

// checkBounds enforces 0 <= discount <= eligible subtotal. A violation is a
// strategy bug and fails loudly rather than clamping.
func checkBounds(q *Quote, elig []domain.CartLine) error {
	if q.DiscountCents < 0 {
		return domain.Invariant("promotion.evaluate", "negative discount computed")
	}
	if q.DiscountCents > domain.Subtotal(elig) {
		return domain.Invariant("promotion.evaluate", "discount exceeds eligible subtotal")
	}
	return nil
}

// lineIDs collects the LineIDs of the given lines.
func lineIDs(lines []domain.CartLine) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.LineID
	}
	return ids
}

// totalQuantity sums quantities across lines.
func totalQuantity(lines []domain.CartLine) int32 {
	var n int32
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// percentOf computes pct% of amount in minor units, rounding half away from
// zero. The single rounding point for all percentage math in this package.
func percentOf(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}

// rupees formats minor units for customer-facing messages.
func rupees(cents int64) string {
	return fmt.Sprintf("₹%d.%02d", cents/100, cents%100)
}

// unit is one physical unit of an eligible line, used by the bundle and BOGO
// walks that need unit-level attribution.
type unit struct {
	lineID     uuid.UUID
	priceCents int64
}

// expandUnits flattens lines into individual units preserving cart order.
func expandUnits(lines []domain.CartLine) []unit {
	var units []unit
	for _, l := range lines {
		for i := int32(0); i < l.Quantity; i++ {
			units = append(units, unit{lineID: l.LineID, priceCents: l.UnitPriceCents})
		}
	}
	return units
}

// distinctLineIDs deduplicates line ids preserving first-seen order.
func distinctLineIDs(units []unit) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(units))
	var ids []uuid.UUID
	for _, u := range units {
		if !seen[u.lineID] {
			seen[u.lineID] = true
			ids = append(ids, u.lineID)
		}
	}
	return ids
}
