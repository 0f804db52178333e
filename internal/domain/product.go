package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrVariantNotFound = &Error{Code: ENOTFOUND, Message: "Variant not found"}
)

// Variant is one sellable variation of a composite product. Variants live
// inside the product aggregate as an ordered list; their stock fields are
// mutated only through the product row's lock.
type Variant struct {
	ID         uuid.UUID         `json:"id"`
	PriceCents int64             `json:"price_cents"`
	Stock      int32             `json:"stock"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Product is the slice of the catalog record this core reads and
// conditionally decrements. The catalog service owns the rest.
type Product struct {
	ID             uuid.UUID
	Name           string
	CategoryID     *uuid.UUID
	BasePriceCents int64

	// BaseStock is the sellable stock for simple products. For composite
	// products it is the aggregate and must equal the sum of variant
	// stocks on every mutation path.
	BaseStock int32

	// Variants is the ordered variant list, empty for simple products.
	Variants []Variant

	UpdatedAt time.Time
}

// IsComposite reports whether the product sells through variants.
func (p *Product) IsComposite() bool {
	return len(p.Variants) > 0
}

// Variant returns the variant with the given id, or nil.
func (p *Product) Variant(id uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// AggregateStock returns the sum of variant stocks for composite products,
// or BaseStock for simple ones.
func (p *Product) AggregateStock() int32 {
	if !p.IsComposite() {
		return p.BaseStock
	}
	var sum int32
	for _, v := range p.Variants {
		sum += v.Stock
	}
	return sum
}

// CheckStockInvariant verifies stock == sum(variant.stock) for composite
// products and that no stock field is negative. Violations indicate a bug in
// a mutation path and must fail loudly.
func (p *Product) CheckStockInvariant() error {
	if p.BaseStock < 0 {
		return Invariant("product.check_stock", "negative product stock")
	}
	if !p.IsComposite() {
		return nil
	}
	var sum int32
	for _, v := range p.Variants {
		if v.Stock < 0 {
			return Invariant("product.check_stock", "negative variant stock")
		}
		sum += v.Stock
	}
	if sum != p.BaseStock {
		return Invariant("product.check_stock", "aggregate stock out of sync with variant stocks")
	}
	return nil
}

// UnitPrice returns the authoritative unit price for the given variant
// (nil for simple products).
func (p *Product) UnitPrice(variantID *uuid.UUID) (int64, error) {
	if variantID == nil {
		if p.IsComposite() {
			return 0, Invalid("product.unit_price", "variant required for composite product")
		}
		return p.BasePriceCents, nil
	}
	v := p.Variant(*variantID)
	if v == nil {
		return 0, ErrVariantNotFound
	}
	return v.PriceCents, nil
}
