package domain

import (
	"time"

	"github.com/google/uuid"
)

// PromotionType enumerates the supported discount strategies. Promotion is a
// closed tagged union over these: the type selects which payload field is
// meaningful, and the strategy engine switches over it exhaustively.
type PromotionType string

const (
	PromotionPercentage    PromotionType = "percentage"
	PromotionFixedAmount   PromotionType = "fixed_amount"
	PromotionBundle        PromotionType = "bundle"
	PromotionBOGO          PromotionType = "bogo"
	PromotionMixMatch      PromotionType = "mix_match"
	PromotionQuantityBreak PromotionType = "quantity_break"
	PromotionTiered        PromotionType = "tiered"
)

// ScopeKind selects which cart lines a promotion may discount.
type ScopeKind string

const (
	ScopeAll        ScopeKind = "all"
	ScopeProducts   ScopeKind = "products"
	ScopeCategories ScopeKind = "categories"
	ScopePriceRange ScopeKind = "price_range"
	ScopeCombined   ScopeKind = "combined" // AND of category and price-range conditions
)

// Scope holds the eligibility conditions for a promotion. Which fields are
// read depends on Kind; Combined reads both CategoryIDs and the price bounds.
type Scope struct {
	Kind        ScopeKind   `json:"kind"`
	ProductIDs  []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`

	// Price bounds in minor units. Zero means unbounded on that side.
	MinPriceCents int64 `json:"min_price_cents,omitempty"`
	MaxPriceCents int64 `json:"max_price_cents,omitempty"`
}

// BundleSpec prices every full group of Quantity eligible units at PriceCents.
type BundleSpec struct {
	Quantity   int32 `json:"quantity"`
	PriceCents int64 `json:"price_cents"`
}

// BOGOSpec discounts GetQuantity units per full set of BuyQuantity+GetQuantity
// eligible units. GetDiscountPercent of 100 makes them fully free.
type BOGOSpec struct {
	BuyQuantity        int32   `json:"buy_quantity"`
	GetQuantity        int32   `json:"get_quantity"`
	GetDiscountPercent float64 `json:"get_discount_percent"`
}

// Tier is one quantity threshold of a tiered promotion.
type Tier struct {
	Quantity        int32   `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// Promotion is an admin-defined discount rule. Immutable once referenced by a
// committed order: historical orders retain the discount actually applied
// (frozen on their lines), never a recomputed one.
type Promotion struct {
	ID   uuid.UUID
	Name string
	Type PromotionType

	// Percent is the discount percentage for the percentage type.
	Percent float64

	// AmountCents is the discount amount for the fixed_amount type.
	AmountCents int64

	// Bundle is read by the bundle, mix_match and quantity_break types.
	Bundle *BundleSpec

	// BOGO is read by the bogo type.
	BOGO *BOGOSpec

	// Tiers is read by the tiered type.
	Tiers []Tier

	Scope Scope

	// MinOrderCents gates the whole cart subtotal. Zero means no minimum.
	MinOrderCents int64

	// MaxDiscountCents caps percentage discounts. Zero means no cap.
	MaxDiscountCents int64

	// Priority breaks ties between promotions producing equal discounts.
	// Higher wins.
	Priority int32

	ValidFrom  time.Time
	ValidUntil time.Time
	IsActive   bool
}

// InWindow reports whether the promotion is active at the given instant.
func (p *Promotion) InWindow(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if !p.ValidFrom.IsZero() && now.Before(p.ValidFrom) {
		return false
	}
	if !p.ValidUntil.IsZero() && now.After(p.ValidUntil) {
		return false
	}
	return true
}
