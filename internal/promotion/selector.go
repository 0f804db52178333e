package promotion

import (
	"sort"
	"time"

	"github.com/dukerupert/sindri/internal/domain"
)

// Offer pairs a promotion with the quote it produced for a cart.
type Offer struct {
	Promotion domain.Promotion
	Quote     Quote
}

// Rank evaluates every promotion against the cart, keeps those that grant a
// discount, and returns them best-first: highest discount, ties broken by
// promotion priority (higher wins), then earliest ValidFrom. The full list
// backs the "other offers you could apply" display.
func Rank(promos []domain.Promotion, cart []domain.CartLine, now time.Time) ([]Offer, error) {
	var offers []Offer
	for _, p := range promos {
		q, err := Evaluate(p, cart, now)
		if err != nil {
			return nil, err
		}
		if q.Applied() {
			offers = append(offers, Offer{Promotion: p, Quote: *q})
		}
	}

	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if a.Quote.DiscountCents != b.Quote.DiscountCents {
			return a.Quote.DiscountCents > b.Quote.DiscountCents
		}
		if a.Promotion.Priority != b.Promotion.Priority {
			return a.Promotion.Priority > b.Promotion.Priority
		}
		return a.Promotion.ValidFrom.Before(b.Promotion.ValidFrom)
	})

	return offers, nil
}

// Best returns the single best offer, or nil when no promotion applies.
func Best(promos []domain.Promotion, cart []domain.CartLine, now time.Time) (*Offer, error) {
	offers, err := Rank(promos, cart, now)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, nil
	}
	return &offers[0], nil
}
