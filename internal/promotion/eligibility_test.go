package promotion

import (
	"testing"
	"time"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func activePromo(scope domain.Scope) domain.Promotion {
	return domain.Promotion{
		ID:       uuid.New(),
		Type:     domain.PromotionPercentage,
		Percent:  10,
		Scope:    scope,
		IsActive: true,
	}
}

func line(productID uuid.UUID, priceCents int64, qty int32, categoryID *uuid.UUID) domain.CartLine {
	return domain.CartLine{
		LineID:         uuid.New(),
		ProductID:      productID,
		UnitPriceCents: priceCents,
		Quantity:       qty,
		CategoryID:     categoryID,
	}
}

func TestEligibleActivityWindow(t *testing.T) {
	p := activePromo(domain.Scope{Kind: domain.ScopeAll})
	l := line(uuid.New(), 500, 1, nil)

	if !Eligible(p, l, testNow) {
		t.Fatal("active promotion with open window should be eligible")
	}

	inactive := p
	inactive.IsActive = false
	if Eligible(inactive, l, testNow) {
		t.Error("inactive promotion should never be eligible")
	}

	future := p
	future.ValidFrom = testNow.Add(time.Hour)
	if Eligible(future, l, testNow) {
		t.Error("promotion before its window should be ineligible")
	}

	expired := p
	expired.ValidUntil = testNow.Add(-time.Hour)
	if Eligible(expired, l, testNow) {
		t.Error("promotion past its window should be ineligible")
	}
}

func TestEligibleScopes(t *testing.T) {
	prodA, prodB := uuid.New(), uuid.New()
	catShoes, catHats := uuid.New(), uuid.New()

	tests := []struct {
		name  string
		scope domain.Scope
		line  domain.CartLine
		want  bool
	}{
		{
			name:  "all matches everything",
			scope: domain.Scope{Kind: domain.ScopeAll},
			line:  line(prodA, 100, 1, nil),
			want:  true,
		},
		{
			name:  "product scope matches listed product",
			scope: domain.Scope{Kind: domain.ScopeProducts, ProductIDs: []uuid.UUID{prodA}},
			line:  line(prodA, 100, 1, nil),
			want:  true,
		},
		{
			name:  "product scope rejects other products",
			scope: domain.Scope{Kind: domain.ScopeProducts, ProductIDs: []uuid.UUID{prodA}},
			line:  line(prodB, 100, 1, nil),
			want:  false,
		},
		{
			name:  "category scope matches listed category",
			scope: domain.Scope{Kind: domain.ScopeCategories, CategoryIDs: []uuid.UUID{catShoes}},
			line:  line(prodA, 100, 1, &catShoes),
			want:  true,
		},
		{
			name:  "category scope rejects other categories",
			scope: domain.Scope{Kind: domain.ScopeCategories, CategoryIDs: []uuid.UUID{catShoes}},
			line:  line(prodA, 100, 1, &catHats),
			want:  false,
		},
		{
			name:  "category scope rejects lines without a category",
			scope: domain.Scope{Kind: domain.ScopeCategories, CategoryIDs: []uuid.UUID{catShoes}},
			line:  line(prodA, 100, 1, nil),
			want:  false,
		},
		{
			name:  "price range within bounds",
			scope: domain.Scope{Kind: domain.ScopePriceRange, MinPriceCents: 100, MaxPriceCents: 500},
			line:  line(prodA, 300, 1, nil),
			want:  true,
		},
		{
			name:  "price range below minimum",
			scope: domain.Scope{Kind: domain.ScopePriceRange, MinPriceCents: 100, MaxPriceCents: 500},
			line:  line(prodA, 50, 1, nil),
			want:  false,
		},
		{
			name:  "price range above maximum",
			scope: domain.Scope{Kind: domain.ScopePriceRange, MinPriceCents: 100, MaxPriceCents: 500},
			line:  line(prodA, 800, 1, nil),
			want:  false,
		},
		{
			name:  "missing max bound is unbounded above",
			scope: domain.Scope{Kind: domain.ScopePriceRange, MinPriceCents: 100},
			line:  line(prodA, 99999, 1, nil),
			want:  true,
		},
		{
			name:  "missing min bound is unbounded below",
			scope: domain.Scope{Kind: domain.ScopePriceRange, MaxPriceCents: 500},
			line:  line(prodA, 1, 1, nil),
			want:  true,
		},
		{
			name: "combined requires both conditions",
			scope: domain.Scope{
				Kind:          domain.ScopeCombined,
				CategoryIDs:   []uuid.UUID{catShoes},
				MinPriceCents: 100,
			},
			line: line(prodA, 300, 1, &catShoes),
			want: true,
		},
		{
			name: "combined fails on category alone",
			scope: domain.Scope{
				Kind:          domain.ScopeCombined,
				CategoryIDs:   []uuid.UUID{catShoes},
				MinPriceCents: 100,
			},
			line: line(prodA, 300, 1, &catHats),
			want: false,
		},
		{
			name: "combined fails on price alone",
			scope: domain.Scope{
				Kind:          domain.ScopeCombined,
				CategoryIDs:   []uuid.UUID{catShoes},
				MinPriceCents: 400,
			},
			line: line(prodA, 300, 1, &catShoes),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activePromo(tt.scope)
			if got := Eligible(p, tt.line, testNow); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
